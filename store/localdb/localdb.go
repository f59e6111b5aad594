// Copyright (c) 2020-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package localdb provides a leveldb backed govhub store.
package localdb

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/decred/govhub/store"
	"github.com/decred/govhub/util"
	"github.com/marcopeereboom/sbox"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
)

const (
	// storeDirname is the data dir subdirectory of the leveldb files.
	storeDirname = "store"

	// keyFilename is the app dir file of the blob encryption key.
	keyFilename = "leveldb-sbox.key"
)

var _ store.BlobKV = (*localdb)(nil)

// localdb is a store.BlobKV on top of leveldb.
//
// Writes are staged in leveldb batches. A tx owns the localdb mutex for its
// whole lifetime so at most one tx, or one direct call, runs at a time.
//
// Blobs saved with encryption are sealed with a secretbox key that is created
// in the app dir on first use.
type localdb struct {
	sync.Mutex
	db     *leveldb.DB
	key    *[32]byte
	closed bool
}

// stage adds the writes of the provided blobs to the batch.
func (l *localdb) stage(b *leveldb.Batch, blobs map[string][]byte, encrypt bool) error {
	for k, v := range blobs {
		if encrypt {
			sealed, err := sbox.Encrypt(0, l.key, v)
			if err != nil {
				return err
			}
			v = sealed
		}
		b.Put([]byte(k), v)
	}
	return nil
}

// unstage adds the deletion of the keys to the batch.
func unstage(b *leveldb.Batch, keys []string) {
	for _, k := range keys {
		b.Delete([]byte(k))
	}
}

// write writes the batch atomically.
func (l *localdb) write(b *leveldb.Batch) error {
	if err := l.db.Write(b, nil); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// read returns the committed blobs of the keys. Missing keys are left out of
// the returned map. Encrypted blobs are opened.
func (l *localdb) read(keys []string) (map[string][]byte, error) {
	blobs := make(map[string][]byte, len(keys))
	for _, k := range keys {
		v, err := l.db.Get([]byte(k), nil)
		switch {
		case errors.Is(err, leveldb.ErrNotFound):
			continue
		case err != nil:
			return nil, errors.WithStack(err)
		}
		if util.IsEncrypted(v) {
			v, _, err = sbox.Decrypt(l.key, v)
			if err != nil {
				return nil, errors.Wrapf(err, "decrypt %v", k)
			}
		}
		blobs[k] = v
	}
	return blobs, nil
}

// locked runs fn while holding the mutex. Calls on a closed store fail with
// store.ErrShutdown.
func (l *localdb) locked(fn func() error) error {
	l.Lock()
	defer l.Unlock()
	if l.closed {
		return store.ErrShutdown
	}
	return fn()
}

// Put saves the blobs atomically.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Put(blobs map[string][]byte, encrypt bool) error {
	return l.locked(func() error {
		b := new(leveldb.Batch)
		if err := l.stage(b, blobs, encrypt); err != nil {
			return err
		}
		if err := l.write(b); err != nil {
			return err
		}

		log.Debugf("Put %v blobs", len(blobs))

		return nil
	})
}

// Del deletes the blobs atomically. Missing keys are ignored.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Del(keys []string) error {
	return l.locked(func() error {
		b := new(leveldb.Batch)
		unstage(b, keys)
		if err := l.write(b); err != nil {
			return err
		}

		log.Debugf("Deleted %v blobs", len(keys))

		return nil
	})
}

// Get returns the blobs of the keys. Missing keys are left out of the
// returned map.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Get(keys []string) (map[string][]byte, error) {
	var blobs map[string][]byte
	err := l.locked(func() error {
		var err error
		blobs, err = l.read(keys)
		return err
	})
	return blobs, err
}

// Tx opens a transaction. The returned cancel function must be invoked once
// the caller is done with the tx; it is a no-op after commit or rollback.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Tx() (store.Tx, func(), error) {
	t := newTx(l)
	if l.closed {
		t.release()
		return nil, nil, store.ErrShutdown
	}

	log.Tracef("Tx opened")

	return t, t.release, nil
}

// Close closes the leveldb database and zeroes the encryption key.
//
// This function satisfies the store BlobKV interface.
func (l *localdb) Close() {
	l.Lock()
	defer l.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	util.Zero(l.key[:])
	if err := l.db.Close(); err != nil {
		log.Errorf("Close leveldb: %v", err)
	}
}

// New opens, or creates, the leveldb store in the data dir. The encryption
// key is loaded from, or created in, the app dir.
func New(appDir, dataDir string) (*localdb, error) {
	switch {
	case appDir == "":
		return nil, errors.Errorf("app dir not provided")
	case dataDir == "":
		return nil, errors.Errorf("data dir not provided")
	}

	dir := filepath.Join(dataDir, storeDirname)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "open %v", dir)
	}
	key, err := util.LoadEncryptionKey(log, filepath.Join(appDir, keyFilename))
	if err != nil {
		db.Close()
		return nil, err
	}

	log.Infof("Store: leveldb %v", dir)

	return &localdb{
		db:  db,
		key: key,
	}, nil
}
