// Copyright (c) 2020-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package store defines the key-value store that govhub persists its records
// to and the blob encoding of the stored values.
package store

import (
	"github.com/pkg/errors"
)

var (
	// ErrShutdown is returned by calls on a closed store.
	ErrShutdown = errors.New("store is shutdown")

	// ErrEncryptionKey is returned when a store is opened with an
	// encryption key that differs from the one it was created with.
	ErrEncryptionKey = errors.New("encryption key mismatch")
)

// Getter reads blobs. Both BlobKV and Tx are getters so lookups can run
// inside or outside a transaction.
type Getter interface {
	// Get returns the blobs of the keys. Missing keys are left out of
	// the returned map; callers check for the keys they require.
	Get(keys []string) (map[string][]byte, error)
}

// Tx is an open store transaction. Its writes are applied atomically on
// Commit. Every Tx ends with Commit or Rollback.
type Tx interface {
	Getter

	// Put stages the blobs. Encrypted blobs are sealed at rest.
	Put(blobs map[string][]byte, encrypt bool) error

	// Del stages the deletion of the keys.
	Del(keys []string) error

	// Rollback drops the staged writes.
	Rollback() error

	// Commit applies the staged writes.
	Commit() error
}

// BlobKV is a key-value store of opaque blobs.
type BlobKV interface {
	Getter

	// Put saves the blobs atomically. Encrypted blobs are sealed at
	// rest.
	Put(blobs map[string][]byte, encrypt bool) error

	// Del deletes the keys atomically. Missing keys are ignored.
	Del(keys []string) error

	// Tx opens a transaction. The returned cancel function rolls back
	// an unfinished tx and releases its resources; it does nothing once
	// the tx has been committed or rolled back, so callers defer it.
	//
	// Reads made through the tx return committed data only.
	Tx() (Tx, func(), error)

	// Close closes the store.
	Close()
}
