package phenix

import "sync"

// Writer is the append-only byte sink every encode operation writes
// through. Generated code and the composite/primitive codecs never assume
// anything about the sink beyond this interface, so encoding can target a
// pooled Buffer or any other type with these two methods. bytes.Buffer and
// io.Writer do not satisfy it as they are, since their methods return errors.
type Writer interface {
	WriteByte(b byte)
	Write(p []byte)
}

// Buffer accumulates encoded bytes. It supports only append operations, the
// same restriction the teacher's Buffer type placed on itself: growth is
// amortized and there is never a reason to splice into the middle of an
// in-progress encode.
type Buffer struct {
	Bytes []byte
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(v byte) {
	b.Bytes = append(b.Bytes, v)
}

// Write appends p in full.
func (b *Buffer) Write(p []byte) {
	b.Bytes = append(b.Bytes, p...)
}

// Reset clears the buffer's contents but keeps its backing array.
func (b *Buffer) Reset() {
	b.Bytes = b.Bytes[:0]
}

var bufferPool = sync.Pool{
	New: func() any { return &Buffer{} },
}

// NewBufferFromPool obtains a reset Buffer from the shared pool. Call
// ReturnToPool when finished with it.
func NewBufferFromPool() *Buffer {
	b := bufferPool.Get().(*Buffer)
	b.Reset()
	return b
}

// ReturnToPool releases the buffer back to the pool. Using the buffer after
// this call is undefined behavior.
func (b *Buffer) ReturnToPool() {
	bufferPool.Put(b)
}
