package ratchet

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	xhkdf "golang.org/x/crypto/hkdf"
)

func reference(t *testing.T, ikm, salt, info []byte, length int) []byte {
	t.Helper()
	out := make([]byte, length)
	_, err := io.ReadFull(xhkdf.New(sha256.New, ikm, salt, info), out)
	require.NoError(t, err)
	return out
}

func TestDeriveInitial(t *testing.T) {
	master := []byte("master secret")

	rk, ck, err := DeriveInitial(master)
	require.NoError(t, err)

	expected := reference(t, master, make([]byte, 32), []byte("WhisperText"), 64)
	assert.Equal(t, expected[:32], rk[:])
	assert.Equal(t, expected[32:], ck.Key[:])
	assert.Zero(t, ck.Index)
}

func TestCreateChain(t *testing.T) {
	rk := RootKey{1, 2, 3}
	dh := []byte("diffie-hellman output")

	nextRK, ck, err := rk.CreateChain(dh)
	require.NoError(t, err)

	expected := reference(t, dh, rk[:], []byte("WhisperRatchet"), 64)
	assert.Equal(t, expected[:32], nextRK[:])
	assert.Equal(t, expected[32:], ck.Key[:])
	assert.NotEqual(t, rk, nextRK)
}

func TestMessageKeys(t *testing.T) {
	ck := ChainKey{Key: [KeySize]byte{9, 9, 9}, Index: 7}

	mk, err := ck.MessageKeys()
	require.NoError(t, err)

	h := hmac.New(sha256.New, ck.Key[:])
	h.Write([]byte{0x01})
	expected := reference(t, h.Sum(nil), nil, []byte("WhisperMessageKeys"), 80)

	assert.Equal(t, expected[:32], mk.CipherKey[:])
	assert.Equal(t, expected[32:64], mk.MACKey[:])
	assert.Equal(t, expected[64:], mk.IV[:])
	assert.Equal(t, uint32(7), mk.Index)
}

func TestNext(t *testing.T) {
	ck := ChainKey{Key: [KeySize]byte{4, 2}, Index: 41}

	next := ck.Next()

	h := hmac.New(sha256.New, ck.Key[:])
	h.Write([]byte{0x02})
	assert.Equal(t, h.Sum(nil), next.Key[:])
	assert.Equal(t, uint32(42), next.Index)

	// Stepping is deterministic and leaves the receiver intact.
	assert.Equal(t, next, ck.Next())
	assert.Equal(t, uint32(41), ck.Index)
}

func TestWipe(t *testing.T) {
	rk := RootKey{1}
	rk.Wipe()
	assert.Equal(t, RootKey{}, rk)

	ck := ChainKey{Key: [KeySize]byte{1}, Index: 3}
	ck.Wipe()
	assert.Equal(t, [KeySize]byte{}, ck.Key)

	mk := MessageKeys{CipherKey: [KeySize]byte{1}, MACKey: [KeySize]byte{2}, IV: [IVSize]byte{3}, Index: 5}
	mk.Wipe()
	assert.Equal(t, MessageKeys{Index: 5}, mk)
}

// Two parties sharing a master secret and DH outputs agree on every key.
type ConversationTestSuite struct {
	suite.Suite

	alice, bob RootKey
}

func TestConversationTestSuite(t *testing.T) {
	suite.Run(t, new(ConversationTestSuite))
}

func (s *ConversationTestSuite) SetupTest() {
	master := []byte("shared master secret")

	var err error
	s.alice, _, err = DeriveInitial(master)
	s.Require().NoError(err)
	s.bob, _, err = DeriveInitial(master)
	s.Require().NoError(err)
}

func (s *ConversationTestSuite) TestChainsAgree() {
	dh := []byte("dh output 1")

	aliceRK, aliceCK, err := s.alice.CreateChain(dh)
	s.Require().NoError(err)
	bobRK, bobCK, err := s.bob.CreateChain(dh)
	s.Require().NoError(err)

	s.Equal(aliceRK, bobRK)

	seen := make(map[[KeySize]byte]struct{})
	for i := 0; i < 10; i++ {
		aliceMK, err := aliceCK.MessageKeys()
		s.Require().NoError(err)
		bobMK, err := bobCK.MessageKeys()
		s.Require().NoError(err)

		s.Equal(aliceMK, bobMK)
		s.Equal(uint32(i), aliceMK.Index)

		_, dup := seen[aliceMK.CipherKey]
		s.False(dup, "cipher key repeated at %d", i)
		seen[aliceMK.CipherKey] = struct{}{}

		aliceCK, bobCK = aliceCK.Next(), bobCK.Next()
	}
}

func (s *ConversationTestSuite) TestDifferentDHDiverges() {
	aliceRK, aliceCK, err := s.alice.CreateChain([]byte("dh output 1"))
	s.Require().NoError(err)
	bobRK, bobCK, err := s.bob.CreateChain([]byte("dh output 2"))
	s.Require().NoError(err)

	s.NotEqual(aliceRK, bobRK)
	s.NotEqual(aliceCK.Key, bobCK.Key)
}
