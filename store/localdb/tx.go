// Copyright (c) 2021-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package localdb

import (
	"sync"

	"github.com/decred/govhub/store"
	"github.com/syndtr/goleveldb/leveldb"
)

var _ store.Tx = (*tx)(nil)

// tx is a store.Tx on top of a leveldb batch. Writes are staged in the batch
// and become visible on commit. Reads return committed data only.
//
// The tx holds the localdb mutex from creation until it is committed, rolled
// back or released.
type tx struct {
	db    *localdb
	batch *leveldb.Batch
	once  sync.Once
}

// newTx locks the localdb and returns a tx on it.
func newTx(db *localdb) *tx {
	db.Lock()
	return &tx{
		db:    db,
		batch: new(leveldb.Batch),
	}
}

// release unlocks the localdb. Only the first call has an effect.
func (t *tx) release() {
	t.once.Do(t.db.Unlock)
}

// Put stages the blobs.
//
// This function satisfies the store Tx interface.
func (t *tx) Put(blobs map[string][]byte, encrypt bool) error {
	return t.db.stage(t.batch, blobs, encrypt)
}

// Del stages the deletion of the keys.
//
// This function satisfies the store Tx interface.
func (t *tx) Del(keys []string) error {
	unstage(t.batch, keys)
	return nil
}

// Get returns the committed blobs of the keys.
//
// This function satisfies the store Tx interface.
func (t *tx) Get(keys []string) (map[string][]byte, error) {
	return t.db.read(keys)
}

// Rollback drops the staged writes and releases the tx.
//
// This function satisfies the store Tx interface.
func (t *tx) Rollback() error {
	t.batch.Reset()
	t.release()

	log.Debugf("Tx rolled back")

	return nil
}

// Commit writes the staged operations atomically and releases the tx. The tx
// is not released when the write fails.
//
// This function satisfies the store Tx interface.
func (t *tx) Commit() error {
	n := t.batch.Len()
	if err := t.db.write(t.batch); err != nil {
		return err
	}
	t.release()

	log.Debugf("Tx committed: %v operations", n)

	return nil
}
