// Copyright (c) 2017-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"io"
	"os"

	"github.com/decred/slog"
	"github.com/marcopeereboom/sbox"
	"github.com/pkg/errors"
)

// sboxMagic prefixes every sealed sbox blob.
var sboxMagic = []byte("sbox")

// Digest returns the SHA256 digest of b.
func Digest(b []byte) []byte {
	d := sha256.Sum256(b)
	return d[:]
}

// Random returns n bytes read from the system random source.
func Random(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// IsEncrypted returns whether b is a sealed sbox blob.
func IsEncrypted(b []byte) bool {
	return bytes.HasPrefix(b, sboxMagic)
}

// LoadEncryptionKey returns the secretbox key stored in keyFile. A new random
// key is written to keyFile, readable by the owner only, when the file does
// not exist.
func LoadEncryptionKey(log slog.Logger, keyFile string) (*[32]byte, error) {
	if keyFile == "" {
		return nil, errors.Errorf("no key file provided")
	}

	if !FileExists(keyFile) {
		k, err := sbox.NewKey()
		if err != nil {
			return nil, err
		}
		err = os.WriteFile(keyFile, k[:], 0400)
		Zero(k[:])
		if err != nil {
			return nil, errors.WithStack(err)
		}
		log.Infof("Encryption key created: %v", keyFile)
	}

	b, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer Zero(b)
	if len(b) != 32 {
		return nil, errors.Errorf("invalid encryption key length %v in %v",
			len(b), keyFile)
	}
	var key [32]byte
	copy(key[:], b)

	log.Debugf("Encryption key: %v", keyFile)

	return &key, nil
}
