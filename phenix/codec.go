package phenix

// Encodable is implemented by every generated struct type. Generated enums
// and flags types have no Encode method; they get free EncodeT functions
// instead. Decode and Recognize are package-level generated functions
// (DecodeFoo/RecognizeFoo) rather than interface methods, since Go methods
// cannot construct a new instance of their own receiver type.
type Encodable interface {
	Encode(w Writer)
}

// StructCodec documents the contract generated struct types implement
// (§4.3). It is not a Go interface generated code is required to satisfy —
// none of Decode/Recognize/RecognizeParts can be expressed as methods
// returning Self — but names the shape every generated struct's free
// functions follow:
//
//	func (v *T) Encode(w phenix.Writer)
//	func DecodeT(c *phenix.ByteCursor) (T, error)
//	func RecognizeT(c *phenix.ByteCursor) (phenix.ByteWindow[T], error)
//	func RecognizePartsT(c *phenix.ByteCursor) (phenix.PartsIterator, error)
//
// RecognizePartsT walks c's fields the same way RecognizeT does, field by
// field, straight off the wire — it never requires a materialized T. That
// is the point of by-parts recognition (§1): a caller can window a
// struct's fields without paying for a full decode first.
type StructCodec interface {
	Encodable
}

// Part is one element produced by a struct's by-parts iterator: the
// declaration-order field index and the raw bytes Recognize would have
// produced for that field. Present is false for an absent optional field,
// in which case Window is empty.
type Part struct {
	Field   int
	Present bool
	Window  []byte
}

// PartsIterator is the by-parts recognition contract every generated
// struct's RecognizePartsT free function returns (§4.3): a state machine
// over states S0..Sn and Done. The first error aborts recognition:
// RecognizePartsT itself returns that error rather than a usable iterator,
// since by-parts recognition walks the cursor the same way Recognize does
// and cannot leave it half-advanced.
type PartsIterator interface {
	// Next returns the next field's part. ok is false once the iterator
	// is exhausted.
	Next() (part Part, ok bool, err error)
}

// sliceParts is a PartsIterator over a slice of parts already recognized
// directly off the wire by a generated RecognizePartsT function.
type sliceParts struct {
	parts []Part
	pos   int
	done  bool
}

// NewPartsIterator builds a PartsIterator over parts a generated
// RecognizePartsT function has already recognized off the input cursor.
func NewPartsIterator(parts []Part) PartsIterator {
	return &sliceParts{parts: parts}
}

// Next implements PartsIterator.
func (it *sliceParts) Next() (Part, bool, error) {
	if it.done {
		return Part{}, false, nil
	}

	if it.pos < len(it.parts) {
		p := it.parts[it.pos]
		it.pos++
		return p, true, nil
	}

	it.done = true
	return Part{}, false, nil
}

// EncodeOptionalHeader writes the packed presence bitmap for a struct's
// optional fields, in declaration order.
func EncodeOptionalHeader(present []bool, w Writer) {
	EncodeBoolRun(present, w)
}

// RecognizeOptionalHeader advances past a struct's packed optional-field
// presence bitmap and returns its raw bytes for later bit testing.
func RecognizeOptionalHeader(c *ByteCursor, n int) ([]byte, error) {
	w, err := RecognizeBoolRun(c, n)
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// TestOptionalBit tests bit i of a presence bitmap produced by
// RecognizeOptionalHeader.
func TestOptionalBit(header []byte, i int) bool {
	return testBit(header, i)
}
