package hkdf_test

import (
	"bytes"
	"fmt"
	"io"

	"salamander/lib/algo/crypto/hkdf"
)

func ExampleDeriveSecrets() {
	ikm := []byte("shared secret from key agreement") // i.e. NOT this.

	// Nil salt selects HashSize zero bytes.
	keys, err := hkdf.DeriveSecrets(ikm, nil, []byte("message keys"), 80)
	if err != nil {
		panic(err)
	}

	cipherKey, macKey, iv := keys[:32], keys[32:64], keys[64:]
	fmt.Println(len(cipherKey), len(macKey), len(iv))

	// Output:
	// 32 32 16
}

func ExampleNewReader() {
	r := hkdf.NewReader([]byte("secret"), []byte("salt"), []byte("context"))
	defer r.Wipe()

	var keys [][]byte
	for i := 0; i < 3; i++ {
		key := make([]byte, 16)
		if _, err := io.ReadFull(r, key); err != nil {
			panic(err)
		}
		keys = append(keys, key)
	}

	for i := range keys {
		fmt.Printf("Key #%d: %v\n", i+1, !bytes.Equal(keys[i], make([]byte, 16)))
	}

	// Output:
	// Key #1: true
	// Key #2: true
	// Key #3: true
}
