// Package phenix is the runtime library behind generated phenix code: the
// byte-level wire format, the primitive and composite codecs, and the
// contract generated structs/enums/flag types implement.
package phenix

// ByteCursor is a read position over an immutable byte slice. It never
// copies or owns the origin slice; callers must keep it alive for as long
// as any ByteWindow or Stream produced from it is in use.
type ByteCursor struct {
	origin   []byte
	consumed int
}

// NewByteCursor starts a cursor at the beginning of origin.
func NewByteCursor(origin []byte) ByteCursor {
	return ByteCursor{origin: origin}
}

// Len returns the number of unconsumed bytes.
func (c *ByteCursor) Len() int {
	return len(c.origin) - c.consumed
}

// Offset returns the number of bytes already consumed from the origin.
func (c *ByteCursor) Offset() int {
	return c.consumed
}

// Origin returns the full backing slice the cursor was built from.
func (c *ByteCursor) Origin() []byte {
	return c.origin
}

// Remaining returns the unconsumed tail of the origin slice.
func (c *ByteCursor) Remaining() []byte {
	return c.origin[c.consumed:]
}

// PeekByte returns the next byte without consuming it.
func (c *ByteCursor) PeekByte() (byte, bool) {
	if c.consumed >= len(c.origin) {
		return 0, false
	}
	return c.origin[c.consumed], true
}

// Advance consumes n bytes and returns the window that was skipped over.
// It panics if n exceeds the remaining length; callers must bounds-check
// first. TakeBytes is the checked alternative.
func (c *ByteCursor) Advance(n int) []byte {
	start := c.consumed
	c.consumed += n
	return c.origin[start:c.consumed]
}

// TakeBytes consumes exactly n bytes, returning ok=false on short input
// instead of panicking. This is the primitive every fixed-width decoder and
// every recognize operation funnels through.
func (c *ByteCursor) TakeBytes(n int) ([]byte, bool) {
	if c.Len() < n {
		return nil, false
	}
	return c.Advance(n), true
}

// ByteWindow is a borrowed view into an origin byte buffer that has been
// validated as containing exactly one encoded value of type T. The type
// parameter is phantom: it documents which decoder the bytes are valid
// input for, nothing more.
type ByteWindow[T any] struct {
	bytes  []byte
	origin int // offset of bytes[0] within the buffer the cursor was built from
}

// Bytes returns the raw bytes of the window.
func (w ByteWindow[T]) Bytes() []byte {
	return w.bytes
}

// Origin returns the offset of this window's first byte within the buffer
// the producing cursor was constructed from.
func (w ByteWindow[T]) Origin() int {
	return w.origin
}

// Span returns the (offset, length) pair describing this window, detached
// from any borrow of the origin buffer.
func (w ByteWindow[T]) Span() ByteSpan[T] {
	return ByteSpan[T]{Offset: w.origin, Length: len(w.bytes)}
}

// newByteWindow builds a window over the bytes a cursor just advanced past.
// startOffset is the cursor offset before the advance.
func newByteWindow[T any](bytes []byte, startOffset int) ByteWindow[T] {
	return ByteWindow[T]{bytes: bytes, origin: startOffset}
}

// NewByteWindow builds a window over c.Origin()[start:end] for generated
// struct/enum Recognize functions, which validate a value by recognizing its
// fields in sequence against c rather than delegating to a single
// primitive/composite recognizer the way RecognizeVector et al. do
// internally.
func NewByteWindow[T any](origin []byte, start, end int) ByteWindow[T] {
	return newByteWindow[T](origin[start:end], start)
}

// castWindow reinterprets a window's phantom element type. Used where one
// primitive's wire representation is reused unmodified for another's
// (signed/float varints riding on the unsigned varint window).
func castWindow[From, To any](w ByteWindow[From]) ByteWindow[To] {
	return ByteWindow[To]{bytes: w.bytes, origin: w.origin}
}

// ByteSpan is a detached (offset, length) pair describing where a value's
// bytes live in some origin buffer, without borrowing it. Spans are cheap
// to store past the lifetime of the cursor that produced them; resolve back
// to bytes with Resolve once the origin is back in hand.
type ByteSpan[T any] struct {
	Offset int
	Length int
}

// Resolve slices the span's bytes out of the given origin buffer. The
// caller is responsible for passing the same origin the span was computed
// against.
func (s ByteSpan[T]) Resolve(origin []byte) []byte {
	return origin[s.Offset : s.Offset+s.Length]
}
