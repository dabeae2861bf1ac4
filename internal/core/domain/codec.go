package domain

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// recordWriter borsh-encodes a record behind its type tag. Records are
// allocated at a fixed size, so the result is zero-padded to space.
type recordWriter struct {
	buf bytes.Buffer
	enc *bin.Encoder
	err error
}

func newRecordWriter(tag [DiscriminatorLength]byte) *recordWriter {
	w := &recordWriter{}
	w.enc = bin.NewBorshEncoder(&w.buf)
	w.err = w.enc.WriteBytes(tag[:], false)
	return w
}

func (w *recordWriter) u64(v uint64) {
	if w.err == nil {
		w.err = w.enc.WriteUint64(v, bin.LE)
	}
}

func (w *recordWriter) str(s string) {
	if w.err == nil {
		w.err = w.enc.WriteString(s)
	}
}

func (w *recordWriter) padded(space int) ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.buf.Len() > space {
		return nil, fmt.Errorf("%w: record needs %d bytes, %d allocated", ErrValidation, w.buf.Len(), space)
	}
	data := make([]byte, space)
	copy(data, w.buf.Bytes())
	return data, nil
}

// argReader borsh-decodes positional values and keeps the first error.
type argReader struct {
	dec *bin.Decoder
	err error
}

func newArgReader(data []byte) *argReader {
	return &argReader{dec: bin.NewBorshDecoder(data)}
}

func (r *argReader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	v, err := r.dec.ReadUint64(bin.LE)
	r.err = err
	return v
}

// str reads a length-prefixed string, refusing lengths above limit.
func (r *argReader) str(limit int) string {
	if r.err != nil {
		return ""
	}
	s, err := r.dec.ReadString()
	if err != nil {
		r.err = err
		return ""
	}
	if limit >= 0 && len(s) > limit {
		r.err = fmt.Errorf("string length %d exceeds %d", len(s), limit)
		return ""
	}
	return s
}

func (r *argReader) remaining() int {
	return r.dec.Remaining()
}
