// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	"encoding/json"
	"sort"

	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/notify"
	"github.com/decred/govhub/store"
	"github.com/pkg/errors"
)

// txn is the state of a single govhub call. Reads go through a write-through
// cache so that a call observes its own writes. Nothing reaches the store
// until commit.
type txn struct {
	getter  store.Getter
	tx      store.Tx // Nil for read only calls
	encrypt bool

	cache   map[string][]byte
	dirty   map[string]struct{}
	deleted map[string]struct{}

	// notifications are dispatched once the txn has been committed.
	notifications []notify.Notification
}

func newTxn(getter store.Getter, tx store.Tx, encrypt bool) *txn {
	return &txn{
		getter:  getter,
		tx:      tx,
		encrypt: encrypt,
		cache:   make(map[string][]byte),
		dirty:   make(map[string]struct{}),
		deleted: make(map[string]struct{}),
	}
}

// getMany returns the blobs of the provided keys. Keys that do not exist are
// not included in the returned map.
func (t *txn) getMany(keys []string) (map[string][]byte, error) {
	r := make(map[string][]byte, len(keys))
	missing := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := t.deleted[k]; ok {
			continue
		}
		if b, ok := t.cache[k]; ok {
			r[k] = b
			continue
		}
		missing = append(missing, k)
	}
	if len(missing) == 0 {
		return r, nil
	}

	blobs, err := t.getter.Get(missing)
	if err != nil {
		return nil, err
	}
	for k, b := range blobs {
		t.cache[k] = b
		r[k] = b
	}
	return r, nil
}

func (t *txn) get(key string) ([]byte, bool, error) {
	blobs, err := t.getMany([]string{key})
	if err != nil {
		return nil, false, err
	}
	b, ok := blobs[key]
	return b, ok, nil
}

func (t *txn) put(key string, b []byte) {
	delete(t.deleted, key)
	t.cache[key] = b
	t.dirty[key] = struct{}{}
}

func (t *txn) del(key string) {
	delete(t.cache, key)
	delete(t.dirty, key)
	t.deleted[key] = struct{}{}
}

// decode decodes a blob into v. The blob must carry the expected data
// descriptor.
func decode(key string, b []byte, descriptor string, v interface{}) error {
	dd, data, err := store.Decode(b)
	if err != nil {
		return errors.Wrapf(err, "decode %v", key)
	}
	if dd.Descriptor != descriptor {
		return v1.NewUserErr(v1.ErrCodeSchemaMismatch,
			"%v: descriptor %q, want %q", key, dd.Descriptor, descriptor)
	}
	err = json.Unmarshal(data, v)
	if err != nil {
		if v1.ErrCodeOf(err) != v1.ErrCodeInvalid {
			return err
		}
		return errors.Wrapf(err, "unmarshal %v", key)
	}
	return nil
}

// load decodes the value of a key into v. False is returned when the key
// does not exist.
func (t *txn) load(key, descriptor string, v interface{}) (bool, error) {
	b, ok, err := t.get(key)
	if err != nil || !ok {
		return false, err
	}
	if err := decode(key, b, descriptor, v); err != nil {
		return false, err
	}
	return true, nil
}

// save encodes v and stages it for the commit.
func (t *txn) save(key, descriptor string, v interface{}) error {
	b, err := store.Encode(descriptor, v)
	if err != nil {
		return errors.Wrapf(err, "encode %v", key)
	}
	t.put(key, b)
	return nil
}

// nextID returns the next id of a collection and advances the collection
// counter.
func (t *txn) nextID(key string) (uint64, error) {
	n, err := t.count(key)
	if err != nil {
		return 0, err
	}
	if err := t.save(key, descriptorCounter, n+1); err != nil {
		return 0, err
	}
	return n, nil
}

// count returns the number of entries of a collection.
func (t *txn) count(key string) (uint64, error) {
	var n uint64
	if _, err := t.load(key, descriptorCounter, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// index returns the sorted ids of an index entry.
func (t *txn) index(key string) ([]uint64, error) {
	var ids []uint64
	if _, err := t.load(key, descriptorIndex, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// indexAdd adds the id to an index entry.
func (t *txn) indexAdd(key string, id uint64) error {
	ids, err := t.index(key)
	if err != nil {
		return err
	}
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if i < len(ids) && ids[i] == id {
		return nil
	}
	ids = append(ids, 0)
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return t.save(key, descriptorIndex, ids)
}

// indexRemove removes the id from an index entry. Entries that become empty
// are deleted.
func (t *txn) indexRemove(key string, id uint64) error {
	ids, err := t.index(key)
	if err != nil {
		return err
	}
	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= id })
	if i == len(ids) || ids[i] != id {
		return nil
	}
	ids = append(ids[:i], ids[i+1:]...)
	if len(ids) == 0 {
		t.del(key)
		return nil
	}
	return t.save(key, descriptorIndex, ids)
}

// strings returns a stored list of strings.
func (t *txn) strings(key string) ([]string, error) {
	var s []string
	if _, err := t.load(key, descriptorStrings, &s); err != nil {
		return nil, err
	}
	return s, nil
}

// notify queues a notification for dispatch after the commit.
func (t *txn) notify(n notify.Notification) {
	t.notifications = append(t.notifications, n)
}

// commit writes all staged changes in the store tx and commits it.
func (t *txn) commit() error {
	if t.tx == nil {
		return errors.New("read only txn")
	}
	if len(t.dirty) > 0 {
		blobs := make(map[string][]byte, len(t.dirty))
		for k := range t.dirty {
			blobs[k] = t.cache[k]
		}
		if err := t.tx.Put(blobs, t.encrypt); err != nil {
			return err
		}
	}
	if len(t.deleted) > 0 {
		keys := make([]string, 0, len(t.deleted))
		for k := range t.deleted {
			keys = append(keys, k)
		}
		if err := t.tx.Del(keys); err != nil {
			return err
		}
	}

	log.Tracef("Commit %v puts %v dels", len(t.dirty), len(t.deleted))

	return t.tx.Commit()
}
