// Package ratchet derives double-ratchet root, chain and message keys with HKDF.
//
// It only derives keys. Session state, storage and message framing live elsewhere.
package ratchet

import (
	"crypto/hmac"
	"crypto/sha256"

	"salamander/lib/algo/crypto/hkdf"

	"github.com/pkg/errors"
)

const (
	KeySize = 32
	IVSize  = 16

	messageKeysSize = 2*KeySize + IVSize
)

var (
	infoInitial     = []byte("WhisperText")
	infoRatchet     = []byte("WhisperRatchet")
	infoMessageKeys = []byte("WhisperMessageKeys")

	messageKeySeed = []byte{0x01}
	chainKeySeed   = []byte{0x02}
)

type RootKey [KeySize]byte

type ChainKey struct {
	Key   [KeySize]byte
	Index uint32
}

type MessageKeys struct {
	CipherKey [KeySize]byte
	MACKey    [KeySize]byte
	IV        [IVSize]byte
	Index     uint32
}

// DeriveInitial splits a handshake master secret into the first root and chain keys.
func DeriveInitial(masterSecret []byte) (RootKey, ChainKey, error) {
	return deriveRootAndChain(masterSecret, nil, infoInitial)
}

// CreateChain mixes a Diffie-Hellman output into rk,
// returning the next root key and a fresh chain key.
func (rk RootKey) CreateChain(dhOutput []byte) (RootKey, ChainKey, error) {
	return deriveRootAndChain(dhOutput, rk[:], infoRatchet)
}

func (rk *RootKey) Wipe() { clear(rk[:]) }

func deriveRootAndChain(ikm, salt, info []byte) (RootKey, ChainKey, error) {
	var okm [2 * KeySize]byte
	defer clear(okm[:])

	if err := hkdf.DeriveSecretsInto(okm[:], ikm, salt, info, uint(len(okm))); err != nil {
		return RootKey{}, ChainKey{}, errors.Wrap(err, "deriving root and chain keys")
	}

	var rk RootKey
	var ck ChainKey
	copy(rk[:], okm[:KeySize])
	copy(ck.Key[:], okm[KeySize:])
	return rk, ck, nil
}

// MessageKeys derives the keys protecting the message at ck.Index.
func (ck ChainKey) MessageKeys() (MessageKeys, error) {
	seed := ck.mac(messageKeySeed)
	defer clear(seed)

	var okm [messageKeysSize]byte
	defer clear(okm[:])

	if err := hkdf.DeriveSecretsInto(okm[:], seed, nil, infoMessageKeys, messageKeysSize); err != nil {
		return MessageKeys{}, errors.Wrap(err, "deriving message keys")
	}

	mk := MessageKeys{Index: ck.Index}
	copy(mk.CipherKey[:], okm[:KeySize])
	copy(mk.MACKey[:], okm[KeySize:2*KeySize])
	copy(mk.IV[:], okm[2*KeySize:])
	return mk, nil
}

// Next returns the following chain key.
func (ck ChainKey) Next() ChainKey {
	next := ChainKey{Index: ck.Index + 1}
	key := ck.mac(chainKeySeed)
	copy(next.Key[:], key)
	clear(key)
	return next
}

func (ck *ChainKey) Wipe() { clear(ck.Key[:]) }

func (ck ChainKey) mac(seed []byte) []byte {
	h := hmac.New(sha256.New, ck.Key[:])
	h.Write(seed)
	return h.Sum(nil)
}

func (mk *MessageKeys) Wipe() {
	clear(mk.CipherKey[:])
	clear(mk.MACKey[:])
	clear(mk.IV[:])
}
