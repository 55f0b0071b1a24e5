// Package vector loads and checks HKDF known-answer vectors.
package vector

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"runtime"

	"salamander/lib/algo/crypto/hkdf"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var ErrMismatch = errors.New("vector mismatch")

// Hex is a byte string encoded as hex text.
type Hex []byte

func (h Hex) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(h)), nil
}

func (h *Hex) UnmarshalText(text []byte) error {
	b, err := hex.DecodeString(string(text))
	if err != nil {
		return errors.Wrap(err, "decoding hex")
	}
	*h = b
	return nil
}

type Vector struct {
	Name   string `toml:"name"`
	IKM    Hex    `toml:"ikm"`
	Salt   Hex    `toml:"salt"`
	Info   Hex    `toml:"info"`
	Length uint   `toml:"length"` // Defaults to len(OKM).
	PRK    Hex    `toml:"prk"`    // Optional.
	OKM    Hex    `toml:"okm"`
}

type file struct {
	Vectors []Vector `toml:"vector"`
}

//go:embed rfc5869.toml
var rfc5869 []byte

// RFC5869 returns the SHA-256 test cases of RFC 5869 Appendix A.
func RFC5869() []Vector {
	vs, err := Load(bytes.NewReader(rfc5869))
	if err != nil {
		panic(err)
	}
	return vs
}

func Load(r io.Reader) ([]Vector, error) {
	var f file
	dec := toml.NewDecoder(r)
	dec = dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "decoding vectors")
	}

	for i, v := range f.Vectors {
		if v.Length == 0 {
			f.Vectors[i].Length = uint(len(v.OKM))
		}
	}
	return f.Vectors, nil
}

func LoadFile(path string) ([]Vector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening vector file")
	}
	defer f.Close()

	vs, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return vs, nil
}

// Check recomputes the vector and compares it with the expected values.
func (v Vector) Check() error {
	if len(v.PRK) > 0 {
		if prk := hkdf.Extract(v.Salt, v.IKM); !bytes.Equal(prk, v.PRK) {
			return errors.Wrapf(ErrMismatch, "%s: prk %x, want %x", v.Name, prk, []byte(v.PRK))
		}
	}

	okm, err := hkdf.DeriveSecrets(v.IKM, v.Salt, v.Info, v.Length)
	if err != nil {
		return errors.Wrapf(err, "%s: deriving", v.Name)
	}
	if !bytes.Equal(okm, v.OKM) {
		return errors.Wrapf(ErrMismatch, "%s: okm %x, want %x", v.Name, okm, []byte(v.OKM))
	}
	return nil
}

// Verify checks vectors concurrently and returns the first failure.
func Verify(ctx context.Context, logger *slog.Logger, vectors []Vector) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, v := range vectors {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := v.Check(); err != nil {
				logger.Warn("vector failed", "name", v.Name, "err", err)
				return err
			}
			logger.Debug("vector passed", "name", v.Name, "length", v.Length)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("vectors verified", "count", len(vectors))
	return nil
}
