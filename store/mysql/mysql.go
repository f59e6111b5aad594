// Copyright (c) 2020-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mysql provides a MySQL backed govhub store.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/decred/govhub/store"
	"github.com/decred/govhub/util"
	"github.com/pkg/errors"

	_ "github.com/go-sql-driver/mysql"
)

const (
	opTimeout       = time.Minute
	connMaxLifetime = time.Minute
	maxIdleConns    = 100
)

var _ store.BlobKV = (*mysql)(nil)

// mysql is a store.BlobKV on top of a single MySQL table. Sealed blobs use a
// key derived from the database password.
type mysql struct {
	closed int32
	db     *sql.DB
	key    *[32]byte
}

// conn is the part of *sql.DB and *sql.Tx that the store uses.
type conn interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
}

func (s *mysql) isClosed() bool {
	return atomic.LoadInt32(&s.closed) != 0
}

func (s *mysql) put(ctx context.Context, c conn, blobs map[string][]byte, encrypt bool) error {
	for k, v := range blobs {
		if encrypt {
			sealed, err := s.encrypt(v)
			if err != nil {
				return errors.Wrapf(err, "encrypt %v", k)
			}
			v = sealed
		}
		if _, err := c.ExecContext(ctx, sqlUpsert, k, v); err != nil {
			return errors.Wrapf(err, "put %v", k)
		}
	}
	return nil
}

func (s *mysql) del(ctx context.Context, c conn, keys []string) error {
	for _, k := range keys {
		if _, err := c.ExecContext(ctx, sqlDelete, k); err != nil {
			return errors.Wrapf(err, "del %v", k)
		}
	}
	return nil
}

// query runs a select statement and adds the rows to blobs.
func query(ctx context.Context, c conn, ss selectStatement, blobs map[string][]byte) error {
	rows, err := c.QueryContext(ctx, ss.Query, ss.Args...)
	if err != nil {
		return errors.WithStack(err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			k string
			v []byte
		)
		if err := rows.Scan(&k, &v); err != nil {
			return errors.WithStack(err)
		}
		blobs[k] = v
	}
	return errors.WithStack(rows.Err())
}

func (s *mysql) get(ctx context.Context, c conn, keys []string) (map[string][]byte, error) {
	blobs := make(map[string][]byte, len(keys))
	for _, ss := range buildSelectStatements(keys, selectSizeLimit) {
		log.Tracef("%v %v", ss.Query, ss.Args)
		if err := query(ctx, c, ss, blobs); err != nil {
			return nil, err
		}
	}
	for k, v := range blobs {
		if !util.IsEncrypted(v) {
			continue
		}
		opened, _, err := s.decrypt(v)
		if err != nil {
			return nil, errors.Wrapf(err, "decrypt %v", k)
		}
		blobs[k] = opened
	}
	return blobs, nil
}

// inTx runs fn in a tx that is committed when fn succeeds.
func (s *mysql) inTx(fn func(store.Tx) error) error {
	tx, cancel, err := s.Tx()
	if err != nil {
		return err
	}
	defer cancel()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Put saves the blobs atomically.
//
// This function satisfies the store BlobKV interface.
func (s *mysql) Put(blobs map[string][]byte, encrypt bool) error {
	err := s.inTx(func(tx store.Tx) error {
		return tx.Put(blobs, encrypt)
	})
	if err != nil {
		return err
	}

	log.Debugf("Put %v blobs", len(blobs))

	return nil
}

// Del deletes the keys atomically.
//
// This function satisfies the store BlobKV interface.
func (s *mysql) Del(keys []string) error {
	err := s.inTx(func(tx store.Tx) error {
		return tx.Del(keys)
	})
	if err != nil {
		return err
	}

	log.Debugf("Deleted %v blobs", len(keys))

	return nil
}

// Get returns the blobs of the keys. Missing keys are left out of the
// returned map.
//
// This function satisfies the store BlobKV interface.
func (s *mysql) Get(keys []string) (map[string][]byte, error) {
	if s.isClosed() {
		return nil, store.ErrShutdown
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.get(ctx, s.db, keys)
}

// Close zeroes the encryption key and closes the connection pool.
//
// This function satisfies the store BlobKV interface.
func (s *mysql) Close() {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return
	}
	if s.key != nil {
		util.Zero(s.key[:])
	}
	if err := s.db.Close(); err != nil {
		log.Errorf("Close mysql: %v", err)
	}
}

func newMySQL(db *sql.DB, key *[32]byte) *mysql {
	return &mysql{
		db:  db,
		key: key,
	}
}

// New connects to the database, creates the blob table when missing and
// derives the encryption key from the password.
func New(host, user, password, dbname string) (*mysql, error) {
	if password == "" {
		return nil, errors.Errorf("password not provided")
	}

	dsn := fmt.Sprintf("%v:%v@tcp(%v)/%v", user, password, host, dbname)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetMaxIdleConns(maxIdleConns)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping")
	}
	if _, err := db.ExecContext(ctx, sqlCreateTable); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create table")
	}

	s := newMySQL(db, nil)
	if err := s.deriveEncryptionKey(password); err != nil {
		db.Close()
		return nil, err
	}

	log.Infof("Store: mysql %v:[password]@tcp(%v)/%v", user, host, dbname)

	return s, nil
}
