// Copyright (c) 2021-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mysql

import (
	"context"
	"database/sql"

	"github.com/decred/govhub/store"
	"github.com/pkg/errors"
)

var _ store.Tx = (*sqlTx)(nil)

// sqlTx is a store.Tx on top of a sql transaction. Unlike the leveldb store,
// reads made through it see its own uncommitted writes.
type sqlTx struct {
	s   *mysql
	ctx context.Context
	tx  *sql.Tx
}

// Put satisfies the store Tx interface.
func (t *sqlTx) Put(blobs map[string][]byte, encrypt bool) error {
	return t.s.put(t.ctx, t.tx, blobs, encrypt)
}

// Del satisfies the store Tx interface.
func (t *sqlTx) Del(keys []string) error {
	return t.s.del(t.ctx, t.tx, keys)
}

// Get satisfies the store Tx interface.
func (t *sqlTx) Get(keys []string) (map[string][]byte, error) {
	return t.s.get(t.ctx, t.tx, keys)
}

// Rollback satisfies the store Tx interface.
func (t *sqlTx) Rollback() error {
	return errors.WithStack(t.tx.Rollback())
}

// Commit satisfies the store Tx interface.
func (t *sqlTx) Commit() error {
	return errors.Wrap(t.tx.Commit(), "commit")
}

// Tx begins a sql transaction. The cancel function rolls back an unfinished
// tx and releases its context.
//
// This function satisfies the store BlobKV interface.
func (s *mysql) Tx() (store.Tx, func(), error) {
	if s.isClosed() {
		return nil, nil, store.ErrShutdown
	}

	ctx, cancelCtx := context.WithTimeout(context.Background(), opTimeout)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		cancelCtx()
		return nil, nil, errors.Wrap(err, "begin tx")
	}
	cancel := func() {
		err := tx.Rollback()
		if err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Errorf("Tx rollback: %v", err)
		}
		cancelCtx()
	}

	return &sqlTx{
		s:   s,
		ctx: ctx,
		tx:  tx,
	}, cancel, nil
}
