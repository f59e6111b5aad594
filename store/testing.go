// Copyright (c) 2021-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"

	"github.com/pkg/errors"
)

// expectBlobs verifies the blobs that g returns. A nil value means the key
// must be missing.
func expectBlobs(g Getter, want map[string][]byte) error {
	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	blobs, err := g.Get(keys)
	if err != nil {
		return err
	}
	for k, w := range want {
		b, ok := blobs[k]
		switch {
		case w == nil && ok:
			return errors.Errorf("%v: unexpected blob %s", k, b)
		case w == nil:
		case !ok:
			return errors.Errorf("%v: blob not found", k)
		case !bytes.Equal(b, w):
			return errors.Errorf("%v: got %s, want %s", k, b, w)
		}
	}
	return nil
}

// TestBlobKV exercises the writes of a BlobKV implementation against a live
// store. It uses keys prefixed with "testops-" and deletes them when done.
func TestBlobKV(kv BlobKV) error {
	const (
		k1 = "testops-1"
		k2 = "testops-2"
	)
	var (
		v1 = []byte("value-1")
		v2 = []byte("value-2")
		v3 = []byte("value-3")
	)

	// inTx runs fn in a tx that is committed when commit is set and
	// rolled back otherwise.
	inTx := func(commit bool, fn func(Tx) error) error {
		tx, cancel, err := kv.Tx()
		if err != nil {
			return err
		}
		defer cancel()
		if err := fn(tx); err != nil {
			return err
		}
		if commit {
			return tx.Commit()
		}
		return tx.Rollback()
	}

	steps := []struct {
		name string
		run  func() error
		want map[string][]byte
	}{
		{
			"clear",
			func() error { return kv.Del([]string{k1, k2}) },
			map[string][]byte{k1: nil, k2: nil},
		},
		{
			"put cleartext",
			func() error { return kv.Put(map[string][]byte{k1: v1}, false) },
			map[string][]byte{k1: v1},
		},
		{
			"overwrite encrypted",
			func() error { return kv.Put(map[string][]byte{k1: v2}, true) },
			map[string][]byte{k1: v2},
		},
		{
			"delete",
			func() error { return kv.Del([]string{k1}) },
			map[string][]byte{k1: nil},
		},
		{
			"rollback",
			func() error {
				return inTx(false, func(tx Tx) error {
					return tx.Put(map[string][]byte{k1: v1}, false)
				})
			},
			map[string][]byte{k1: nil},
		},
		{
			"commit",
			func() error {
				return inTx(true, func(tx Tx) error {
					err := tx.Put(map[string][]byte{k1: v1, k2: v2}, true)
					if err != nil {
						return err
					}
					if err := tx.Del([]string{k2}); err != nil {
						return err
					}
					return tx.Put(map[string][]byte{k2: v3}, false)
				})
			},
			map[string][]byte{k1: v1, k2: v3},
		},
		{
			"cleanup",
			func() error { return kv.Del([]string{k1, k2}) },
			map[string][]byte{k1: nil, k2: nil},
		},
	}
	for _, s := range steps {
		if err := s.run(); err != nil {
			return errors.Wrap(err, s.name)
		}
		if err := expectBlobs(kv, s.want); err != nil {
			return errors.Wrap(err, s.name)
		}
	}
	return nil
}
