// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/decred/slog"
	"github.com/marcopeereboom/sbox"
)

func TestArgon2idKey(t *testing.T) {
	ap := Argon2Params{
		Time:    1,
		Memory:  1024,
		Threads: 1,
		KeyLen:  32,
		Salt:    []byte("0123456789abcdef"),
	}
	k1 := Argon2idKey("password", ap)
	k2 := Argon2idKey("password", ap)
	if !bytes.Equal(k1[:], k2[:]) {
		t.Fatal("derivation is not deterministic")
	}
	k3 := Argon2idKey("other", ap)
	if bytes.Equal(k1[:], k3[:]) {
		t.Fatal("different passwords derived the same key")
	}

	p1, err := NewArgon2Params()
	if err != nil {
		t.Fatal(err)
	}
	p2, err := NewArgon2Params()
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(p1.Salt, p2.Salt) {
		t.Error("salts are not random")
	}
}

func TestLoadEncryptionKey(t *testing.T) {
	keyFile := filepath.Join(t.TempDir(), "sbox.key")

	k1, err := LoadEncryptionKey(slog.Disabled, keyFile)
	if err != nil {
		t.Fatal(err)
	}
	k2, err := LoadEncryptionKey(slog.Disabled, keyFile)
	if err != nil {
		t.Fatal(err)
	}
	if *k1 != *k2 {
		t.Fatal("reloaded key differs")
	}

	sealed, err := sbox.Encrypt(0, k1, []byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if !IsEncrypted(sealed) {
		t.Error("sealed blob not detected")
	}
	if IsEncrypted([]byte("secret")) {
		t.Error("cleartext detected as sealed")
	}

	Zero(k1[:])
	if *k1 != [32]byte{} {
		t.Error("key not zeroed")
	}

	short := filepath.Join(t.TempDir(), "short.key")
	if err := os.WriteFile(short, []byte("short"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEncryptionKey(slog.Disabled, short); err == nil {
		t.Error("short key accepted")
	}
}
