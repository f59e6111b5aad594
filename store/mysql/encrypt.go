// Copyright (c) 2020-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mysql

import (
	"bytes"
	"encoding/json"

	"github.com/decred/govhub/store"
	"github.com/decred/govhub/util"
	"github.com/marcopeereboom/sbox"
	"github.com/pkg/errors"
)

// encryptionKeyParamsKey is the store key of the encryptionKeyParams.
const encryptionKeyParamsKey = "store-mysql-encryptionkeyparams"

// encryptionKeyParams holds the argon2 params of the encryption key and the
// digest of the derived key. It is written when the key is first derived so
// that later runs derive the same key and detect a changed password.
type encryptionKeyParams struct {
	Digest []byte            `json:"digest"`
	Params util.Argon2Params `json:"params"`
}

// loadKeyParams returns the saved key params, or nil when none were saved.
func (s *mysql) loadKeyParams() (*encryptionKeyParams, error) {
	blobs, err := s.Get([]string{encryptionKeyParamsKey})
	if err != nil {
		return nil, err
	}
	b, ok := blobs[encryptionKeyParamsKey]
	if !ok {
		return nil, nil
	}
	var ekp encryptionKeyParams
	if err := json.Unmarshal(b, &ekp); err != nil {
		return nil, errors.Wrap(err, "key params")
	}
	return &ekp, nil
}

// deriveEncryptionKey sets the encryption key to the argon2id key of the
// password. It fails with store.ErrEncryptionKey when the key does not match
// the digest saved by an earlier run.
func (s *mysql) deriveEncryptionKey(password string) error {
	ekp, err := s.loadKeyParams()
	if err != nil {
		return err
	}

	if ekp != nil {
		key := util.Argon2idKey(password, ekp.Params)
		if !bytes.Equal(util.Digest(key[:]), ekp.Digest) {
			util.Zero(key[:])
			return store.ErrEncryptionKey
		}
		s.key = key
		return nil
	}

	params, err := util.NewArgon2Params()
	if err != nil {
		return err
	}
	key := util.Argon2idKey(password, *params)
	b, err := json.Marshal(encryptionKeyParams{
		Digest: util.Digest(key[:]),
		Params: *params,
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if err := s.Put(map[string][]byte{encryptionKeyParamsKey: b}, false); err != nil {
		return err
	}
	s.key = key

	log.Infof("Encryption key params created")

	return nil
}

func (s *mysql) encrypt(data []byte) ([]byte, error) {
	if s.key == nil {
		return nil, store.ErrEncryptionKey
	}
	return sbox.Encrypt(0, s.key, data)
}

func (s *mysql) decrypt(data []byte) ([]byte, uint32, error) {
	if s.key == nil {
		return nil, 0, store.ErrEncryptionKey
	}
	return sbox.Decrypt(s.key, data)
}
