// Copyright (c) 2020-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"golang.org/x/crypto/argon2"
)

// Argon2Params are the argon2id parameters of a derived key. They are saved
// next to the data so the same key can be derived again.
type Argon2Params struct {
	Time    uint32 `json:"time"`
	Memory  uint32 `json:"memory"` // KiB
	Threads uint8  `json:"threads"`
	KeyLen  uint32 `json:"keylen"`
	Salt    []byte `json:"salt"`
}

const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2SaltLen = 16
)

// NewArgon2Params returns the default params with a fresh random salt.
func NewArgon2Params() (*Argon2Params, error) {
	salt, err := Random(argon2SaltLen)
	if err != nil {
		return nil, err
	}
	return &Argon2Params{
		Time:    argon2Time,
		Memory:  argon2Memory,
		Threads: argon2Threads,
		KeyLen:  32,
		Salt:    salt,
	}, nil
}

// Argon2idKey derives a secretbox key from the password. The intermediate key
// material is zeroed.
func Argon2idKey(password string, p Argon2Params) *[32]byte {
	derived := argon2.IDKey([]byte(password), p.Salt, p.Time, p.Memory,
		p.Threads, p.KeyLen)
	defer Zero(derived)

	var key [32]byte
	copy(key[:], derived)
	return &key
}
