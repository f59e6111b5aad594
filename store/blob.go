// Copyright (c) 2020-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/gob"
	"encoding/hex"
	"encoding/json"

	"github.com/decred/govhub/util"
	"github.com/pkg/errors"
)

// DataTypeStructure is the data type of blobs that carry a JSON encoded
// structure.
const DataTypeStructure = "struct"

// ErrDigest is returned when a blob payload does not match its digest.
var ErrDigest = errors.New("blob entry digest mismatch")

// DataDescriptor describes the payload of a blob. Descriptor names the kind
// and version of the encoded structure, for example "proposal-v1".
type DataDescriptor struct {
	Type       string `json:"type"`
	Descriptor string `json:"descriptor"`
	ExtraData  string `json:"extradata,omitempty"`
}

// BlobEntry is the stored form of a value. The hint is the JSON encoded
// DataDescriptor. Hint and payload are base64 encoded and the digest is the
// hex encoded SHA256 of the payload.
type BlobEntry struct {
	Digest   string `json:"digest"`
	DataHint string `json:"datahint"`
	Data     string `json:"data"`
}

// NewBlobEntry returns the blob entry of a hint and payload.
func NewBlobEntry(dataHint, data []byte) BlobEntry {
	return BlobEntry{
		Digest:   hex.EncodeToString(util.Digest(data)),
		DataHint: base64.StdEncoding.EncodeToString(dataHint),
		Data:     base64.StdEncoding.EncodeToString(data),
	}
}

// Blobify returns the gzipped gob encoding of the entry.
func Blobify(be BlobEntry) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := gob.NewEncoder(zw).Encode(be); err != nil {
		return nil, errors.WithStack(err)
	}
	// Close flushes the compressed stream.
	if err := zw.Close(); err != nil {
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// Deblob decodes a blob created by Blobify.
func Deblob(blob []byte) (*BlobEntry, error) {
	zr, err := gzip.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer zr.Close()

	var be BlobEntry
	if err := gob.NewDecoder(zr).Decode(&be); err != nil {
		return nil, errors.WithStack(err)
	}
	return &be, nil
}

// Encode returns the blob of the JSON encoding of v tagged with the
// descriptor.
func Encode(descriptor string, v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	hint, err := json.Marshal(DataDescriptor{
		Type:       DataTypeStructure,
		Descriptor: descriptor,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return Blobify(NewBlobEntry(hint, data))
}

// Decode returns the descriptor and the JSON payload of a blob created by
// Encode. The payload digest is verified.
func Decode(blob []byte) (*DataDescriptor, []byte, error) {
	be, err := Deblob(blob)
	if err != nil {
		return nil, nil, err
	}

	var (
		dd   DataDescriptor
		hint []byte
		data []byte
		sum  []byte
	)
	if hint, err = base64.StdEncoding.DecodeString(be.DataHint); err != nil {
		return nil, nil, errors.Wrap(err, "hint")
	}
	if err = json.Unmarshal(hint, &dd); err != nil {
		return nil, nil, errors.Wrap(err, "descriptor")
	}
	if dd.Type != DataTypeStructure {
		return nil, nil, errors.Errorf("invalid data type %q", dd.Type)
	}
	if data, err = base64.StdEncoding.DecodeString(be.Data); err != nil {
		return nil, nil, errors.Wrap(err, "data")
	}
	if sum, err = hex.DecodeString(be.Digest); err != nil {
		return nil, nil, errors.Wrap(err, "digest")
	}
	if !bytes.Equal(util.Digest(data), sum) {
		return nil, nil, ErrDigest
	}
	return &dd, data, nil
}
