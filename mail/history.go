// Copyright (c) 2021-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mail

import (
	"encoding/json"

	"github.com/decred/govhub/store"
	"github.com/pkg/errors"
)

const (
	// keyPrefixHistory is the key prefix of the email history of an
	// account.
	keyPrefixHistory = "mail/history/"

	// descriptorHistory is the data descriptor of an encoded
	// EmailHistory.
	descriptorHistory = "email-history-v1"
)

// EmailHistory keeps track of the received emails by each account. This is
// used to rate limit the amount of emails an account can receive in a rate
// limit period.
type EmailHistory struct {
	Timestamps []int64 `json:"timestamps"` // Received email UNIX ts

	// LimitWarningSent is used to track accounts that have hit the
	// rate limit and have already been sent a notification email
	// letting them know that they hit the rate limit.
	LimitWarningSent bool `json:"limitwarningsent"`
}

// HistoryDB stores the email histories of accounts.
type HistoryDB interface {
	// EmailHistoriesGet returns the email histories of the provided
	// accounts. Accounts without a history are not included in the
	// returned map.
	EmailHistoriesGet(accounts []string) (map[string]EmailHistory, error)

	// EmailHistoriesSave saves the provided email histories.
	EmailHistoriesSave(histories map[string]EmailHistory) error
}

// kvHistoryDB is a HistoryDB that is backed by a BlobKV.
type kvHistoryDB struct {
	kv store.BlobKV
}

var _ HistoryDB = (*kvHistoryDB)(nil)

// NewHistoryDB returns a HistoryDB that saves the email histories to the
// provided key-value store.
func NewHistoryDB(kv store.BlobKV) HistoryDB {
	return &kvHistoryDB{
		kv: kv,
	}
}

// EmailHistoriesGet satisfies the HistoryDB interface.
func (h *kvHistoryDB) EmailHistoriesGet(accounts []string) (map[string]EmailHistory, error) {
	keys := make([]string, 0, len(accounts))
	for _, v := range accounts {
		keys = append(keys, keyPrefixHistory+v)
	}
	blobs, err := h.kv.Get(keys)
	if err != nil {
		return nil, err
	}

	histories := make(map[string]EmailHistory, len(blobs))
	for _, account := range accounts {
		b, ok := blobs[keyPrefixHistory+account]
		if !ok {
			continue
		}
		dd, data, err := store.Decode(b)
		if err != nil {
			return nil, err
		}
		if dd.Descriptor != descriptorHistory {
			return nil, errors.Errorf("unknown email history descriptor %q",
				dd.Descriptor)
		}
		var eh EmailHistory
		err = json.Unmarshal(data, &eh)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		histories[account] = eh
	}

	return histories, nil
}

// EmailHistoriesSave satisfies the HistoryDB interface.
func (h *kvHistoryDB) EmailHistoriesSave(histories map[string]EmailHistory) error {
	if len(histories) == 0 {
		return nil
	}
	blobs := make(map[string][]byte, len(histories))
	for account, eh := range histories {
		b, err := store.Encode(descriptorHistory, eh)
		if err != nil {
			return err
		}
		blobs[keyPrefixHistory+account] = b
	}
	return h.kv.Put(blobs, false)
}
