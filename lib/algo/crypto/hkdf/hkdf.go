// Package hkdf implements HMAC-based Extract-and-Expand Key Derivation Function (HKDF)
// over HMAC-SHA256.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc5869
package hkdf

import (
	"crypto/hmac"
	"crypto/sha256"
	"hash"

	"github.com/pkg/errors"
)

const (
	// HashSize is the output size of the underlying HMAC, and the size of a PRK.
	HashSize = sha256.Size

	// MaxOutputSize is the longest output Expand can produce,
	// since blocks are indexed by a single byte counter.
	MaxOutputSize = 255 * HashSize

	// Block counter starts at 1.
	counterOffset = 1
)

var (
	ErrInvalidLength  = errors.New("hkdf: invalid output length")
	ErrBufferTooSmall = errors.New("hkdf: buffer too small")
)

func newMAC(key []byte) hash.Hash { return hmac.New(sha256.New, key) }

// Extract returns PRK = HMAC(salt, ikm), which is always HashSize bytes long.
// Empty salt is replaced by HashSize zero bytes.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc5869#section-2.2
func Extract(salt, ikm []byte) (prk []byte) {
	prk = make([]byte, HashSize)
	extract(prk, salt, ikm)
	return prk
}

func extract(prk, salt, ikm []byte) {
	if len(salt) == 0 {
		var zeros [HashSize]byte
		salt = zeros[:]
	}

	h := newMAC(salt)
	h.Write(ikm)
	h.Sum(prk[:0])
}

// Expand returns the first length bytes of T(1) || T(2) || ... derived from prk and info.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc5869#section-2.3
func Expand(prk, info []byte, length uint) (okm []byte, err error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}

	okm = make([]byte, length)
	if err := ExpandInto(okm, prk, info, length); err != nil {
		return nil, err
	}
	return okm, nil
}

// ExpandInto is Expand writing into dst[:length]. Bytes of dst past length are untouched.
func ExpandInto(dst, prk, info []byte, length uint) error {
	if err := checkLength(length); err != nil {
		return err
	}
	if uint(len(dst)) < length {
		return errors.Wrapf(ErrBufferTooSmall, "output has %d bytes, want %d", len(dst), length)
	}
	if len(prk) < HashSize {
		return errors.Wrapf(ErrBufferTooSmall, "prk has %d bytes, want at least %d", len(prk), HashSize)
	}

	expand(dst[:length], prk, info)
	return nil
}

// expand fills okm entirely. len(okm) must not exceed MaxOutputSize.
func expand(okm, prk, info []byte) {
	h := newMAC(prk)
	defer h.Reset()

	var t [HashSize]byte
	defer clear(t[:])

	// T(0) is empty; every following block is fed the previous full block.
	var prev []byte
	counter := byte(counterOffset)
	for written := 0; written < len(okm); counter++ {
		h.Reset()
		h.Write(prev)
		h.Write(info)
		h.Write([]byte{counter})
		h.Sum(t[:0])

		written += copy(okm[written:], t[:])
		prev = t[:]
	}
}

// DeriveSecrets runs Extract followed by Expand.
//
// A nil or empty salt selects the default salt of HashSize zero bytes,
// so DeriveSecrets(ikm, nil, info, l) equals DeriveSecrets(ikm, make([]byte, HashSize), info, l).
func DeriveSecrets(ikm, salt, info []byte, length uint) ([]byte, error) {
	if err := checkLength(length); err != nil {
		return nil, err
	}

	okm := make([]byte, length)
	if err := DeriveSecretsInto(okm, ikm, salt, info, length); err != nil {
		return nil, err
	}
	return okm, nil
}

// DeriveSecretsInto is DeriveSecrets writing into dst[:length].
func DeriveSecretsInto(dst, ikm, salt, info []byte, length uint) error {
	if err := checkLength(length); err != nil {
		return err
	}
	if uint(len(dst)) < length {
		return errors.Wrapf(ErrBufferTooSmall, "output has %d bytes, want %d", len(dst), length)
	}

	var prk [HashSize]byte
	defer clear(prk[:])

	extract(prk[:], salt, ikm)
	expand(dst[:length], prk[:], info)
	return nil
}

func checkLength(length uint) error {
	if length > MaxOutputSize {
		return errors.Wrapf(ErrInvalidLength, "requested %d bytes, at most %d", length, MaxOutputSize)
	}
	return nil
}
