package hkdf

import (
	"hash"
	"io"

	"github.com/pkg/errors"
)

// Reader streams the output of Expand.
// Reading n bytes yields exactly what Expand(prk, info, n) returns,
// and continued reads extend it without recomputing earlier blocks.
type Reader struct {
	h    hash.Hash
	info []byte

	counter uint
	block   [HashSize]byte
	buf     []byte // unread tail of block
}

var _ io.Reader = (*Reader)(nil)

// NewReader returns a Reader over Extract(salt, ikm).
func NewReader(ikm, salt, info []byte) *Reader {
	var prk [HashSize]byte
	defer clear(prk[:])

	extract(prk[:], salt, ikm)
	return newReader(prk[:], info)
}

// NewExpandReader returns a Reader over prk, which must be at least HashSize bytes.
func NewExpandReader(prk, info []byte) (*Reader, error) {
	if len(prk) < HashSize {
		return nil, errors.Wrapf(ErrBufferTooSmall, "prk has %d bytes, want at least %d", len(prk), HashSize)
	}
	return newReader(prk, info), nil
}

func newReader(prk, info []byte) *Reader {
	return &Reader{
		h:       newMAC(prk),
		info:    append([]byte(nil), info...),
		counter: counterOffset,
	}
}

func (r *Reader) Read(p []byte) (n int, err error) {
	for n < len(p) {
		if len(r.buf) == 0 {
			if r.counter > MaxOutputSize/HashSize {
				return n, errors.Wrapf(ErrInvalidLength, "read past %d bytes", MaxOutputSize)
			}
			r.next()
		}

		copied := copy(p[n:], r.buf)
		r.buf = r.buf[copied:]
		n += copied
	}
	return n, nil
}

func (r *Reader) next() {
	var prev []byte
	if r.counter > counterOffset {
		prev = r.block[:]
	}

	r.h.Reset()
	r.h.Write(prev)
	r.h.Write(r.info)
	r.h.Write([]byte{byte(r.counter)})
	r.h.Sum(r.block[:0])

	r.buf = r.block[:]
	r.counter++
}

// Wipe clears buffered key material. The Reader must not be used afterwards.
func (r *Reader) Wipe() {
	clear(r.block[:])
	r.buf = nil
	r.h.Reset()
	r.counter = MaxOutputSize/HashSize + 1
}
