package phenix

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodeTo(f func(Writer)) []byte {
	buf := &Buffer{}
	f(buf)
	return buf.Bytes
}

// TestScenarios checks the literal end-to-end byte layouts from the
// specification's scenario table (S1-S10).
func TestScenarios(t *testing.T) {
	cases := []struct {
		name string
		got  []byte
		want string
	}{
		{"S1 uint 0", encodeTo(func(w Writer) { EncodeUint(0, w) }), "00"},
		{"S2 uint 247", encodeTo(func(w Writer) { EncodeUint(247, w) }), "f7"},
		{"S3 uint 248", encodeTo(func(w Writer) { EncodeUint(248, w) }), "f8f8"},
		{"S4 uint 65535", encodeTo(func(w Writer) { EncodeUint(65535, w) }), "f9ffff"},
		{"S5 sint -1", encodeTo(func(w Writer) { EncodeSint(-1, w) }), "01"},
		{"S6 sint 1", encodeTo(func(w Writer) { EncodeSint(1, w) }), "02"},
		{"S7 f64 +inf", encodeTo(func(w Writer) { EncodeFloat64(math.Inf(1), w) }), "f97ff0"},
		{"S8 f64 -inf", encodeTo(func(w Writer) { EncodeFloat64(math.Inf(-1), w) }), "f9fff0"},
		{
			"S9 bool run",
			encodeTo(func(w Writer) { EncodeBoolRun([]bool{false, true, true, false, true}, w) }),
			"16",
		},
		{"S10 string Hi", encodeTo(func(w Writer) { EncodeString("Hi", w) }), "024869"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, hex.EncodeToString(tc.got))
		})
	}
}

func TestUintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 247, 248, 249, 65535, 65536, math.MaxUint32, math.MaxUint64}

	for _, v := range values {
		buf := &Buffer{}
		EncodeUint(v, buf)

		c := NewByteCursor(buf.Bytes)
		got, err := DecodeUint(&c)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(buf.Bytes), c.Offset())
	}
}

func TestUintMinimality(t *testing.T) {
	// Smallest possible encoding: header <= 247 directly, otherwise the
	// trailing byte count is the minimum whose leading byte is nonzero.
	cases := []struct {
		value    uint64
		wantLen  int
		wantHead byte
	}{
		{0, 1, 0},
		{247, 1, 247},
		{248, 2, 248},
		{65535, 3, 249},
		{1 << 32, 6, 252},
	}

	for _, tc := range cases {
		buf := &Buffer{}
		EncodeUint(tc.value, buf)
		assert.Len(t, buf.Bytes, tc.wantLen, "value %d", tc.value)
		assert.Equal(t, tc.wantHead, buf.Bytes[0], "value %d", tc.value)
	}
}

func TestSintRoundTrip(t *testing.T) {
	values := []int64{0, -1, 1, math.MinInt64, math.MaxInt64, -1000, 1000}

	for _, v := range values {
		buf := &Buffer{}
		EncodeSint(v, buf)

		c := NewByteCursor(buf.Bytes)
		got, err := DecodeSint(&c)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFloat64RoundTrip(t *testing.T) {
	values := []float64{0, 1.5, -1.5, math.Inf(1), math.Inf(-1), math.MaxFloat64, -0.0}

	for _, v := range values {
		buf := &Buffer{}
		EncodeFloat64(v, buf)

		c := NewByteCursor(buf.Bytes)
		got, err := DecodeFloat64(&c)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFloat64NaN(t *testing.T) {
	buf := &Buffer{}
	EncodeFloat64(math.NaN(), buf)

	c := NewByteCursor(buf.Bytes)
	got, err := DecodeFloat64(&c)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestBoolRunRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 7, 8, 9, 16, 17} {
		values := make([]bool, n)
		for i := range values {
			values[i] = i%3 == 0
		}

		buf := &Buffer{}
		EncodeBoolRun(values, buf)
		assert.Equal(t, BoolByteSize(n), len(buf.Bytes))

		c := NewByteCursor(buf.Bytes)
		got, err := DecodeBoolRun(&c, n)
		require.NoError(t, err)
		assert.Equal(t, values, got)
	}
}

func TestBoolRunIgnoresPaddingBits(t *testing.T) {
	// 3 bits used, high 5 bits garbage: decode must ignore them.
	buf := &Buffer{Bytes: []byte{0b11111011}}
	c := NewByteCursor(buf.Bytes)
	got, err := DecodeBoolRun(&c, 3)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, false}, got)
}

func TestStringRoundTrip(t *testing.T) {
	values := []string{"", "Hi", "hello, world", "éèê", "a string long enough to need a multi-byte length prefix that exceeds 247 bytes so the varint header grows past a single byte 0123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890123456789012345678901234567890123456789"}

	for _, v := range values {
		buf := &Buffer{}
		EncodeString(v, buf)

		c := NewByteCursor(buf.Bytes)
		got, err := DecodeString(&c)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestStringInvalidUTF8(t *testing.T) {
	buf := &Buffer{}
	EncodeUint(3, buf)
	buf.Write([]byte{'a', 0xff, 'b'})

	c := NewByteCursor(buf.Bytes)
	_, err := DecodeString(&c)
	require.Error(t, err)

	var valueErr *ValueError
	require.ErrorAs(t, err, &valueErr)
	assert.Equal(t, 2, valueErr.Offset()) // offset of the first invalid byte
}

// TestRecognizeEquivalence checks invariant 2: recognize succeeds iff
// decode succeeds, and leaves the cursor at the same offset.
func TestRecognizeEquivalence(t *testing.T) {
	good := encodeTo(func(w Writer) { EncodeUint(123456, w) })

	c1 := NewByteCursor(good)
	_, decodeErr := DecodeUint(&c1)

	c2 := NewByteCursor(good)
	_, recognizeErr := RecognizeUint(&c2)

	require.NoError(t, decodeErr)
	require.NoError(t, recognizeErr)
	assert.Equal(t, c1.Offset(), c2.Offset())

	truncated := good[:len(good)-1]
	c3 := NewByteCursor(truncated)
	_, decodeErr = DecodeUint(&c3)

	c4 := NewByteCursor(truncated)
	_, recognizeErr = RecognizeUint(&c4)

	assert.Error(t, decodeErr)
	assert.Error(t, recognizeErr)
}

func TestUnexpectedEOF(t *testing.T) {
	c := NewByteCursor(nil)
	_, err := DecodeUint(&c)
	require.Error(t, err)

	var eof *UnexpectedEOF
	require.ErrorAs(t, err, &eof)
	assert.Equal(t, 0, eof.Offset())
}

func TestFixedWidthRoundTrip(t *testing.T) {
	buf := &Buffer{}
	EncodeU8(200, buf)
	EncodeI8(-5, buf)
	EncodeU16(60000, buf)
	EncodeI16(-30000, buf)
	EncodeU32(4000000000, buf)
	EncodeI32(-2000000000, buf)
	EncodeU64(math.MaxUint64, buf)
	EncodeI64(math.MinInt64, buf)
	EncodeFloat32(3.5, buf)

	c := NewByteCursor(buf.Bytes)

	u8, err := DecodeU8(&c)
	require.NoError(t, err)
	assert.Equal(t, uint8(200), u8)

	i8, err := DecodeI8(&c)
	require.NoError(t, err)
	assert.Equal(t, int8(-5), i8)

	u16, err := DecodeU16(&c)
	require.NoError(t, err)
	assert.Equal(t, uint16(60000), u16)

	i16, err := DecodeI16(&c)
	require.NoError(t, err)
	assert.Equal(t, int16(-30000), i16)

	u32, err := DecodeU32(&c)
	require.NoError(t, err)
	assert.Equal(t, uint32(4000000000), u32)

	i32, err := DecodeI32(&c)
	require.NoError(t, err)
	assert.Equal(t, int32(-2000000000), i32)

	u64, err := DecodeU64(&c)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), u64)

	i64, err := DecodeI64(&c)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), i64)

	f32, err := DecodeFloat32(&c)
	require.NoError(t, err)
	assert.Equal(t, float32(3.5), f32)

	assert.Equal(t, len(buf.Bytes), c.Offset())
}

func TestDiscriminant(t *testing.T) {
	buf := &Buffer{}
	EncodeDiscriminant(1, buf)
	assert.Equal(t, []byte{1}, buf.Bytes)

	c := NewByteCursor(buf.Bytes)
	tag, err := DecodeDiscriminant(&c)
	require.NoError(t, err)
	assert.Equal(t, 1, tag)
}
