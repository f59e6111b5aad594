// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package store

import (
	"errors"
	"testing"

	"github.com/go-test/deep"
)

func TestEncodeDecode(t *testing.T) {
	type record struct {
		Name string `json:"name"`
		ID   uint32 `json:"id"`
	}
	in := record{Name: "indexer", ID: 7}

	blob, err := Encode("proposal-v1", in)
	if err != nil {
		t.Fatal(err)
	}
	dd, data, err := Decode(blob)
	if err != nil {
		t.Fatal(err)
	}
	want := DataDescriptor{Type: DataTypeStructure, Descriptor: "proposal-v1"}
	if diff := deep.Equal(*dd, want); diff != nil {
		t.Error(diff)
	}
	if string(data) != `{"name":"indexer","id":7}` {
		t.Errorf("got data %s", data)
	}
}

func TestDecodeDigestMismatch(t *testing.T) {
	be := NewBlobEntry([]byte(`{"type":"struct","descriptor":"x"}`),
		[]byte("payload"))
	be.Digest = "00"
	blob, err := Blobify(be)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = Decode(blob)
	if !errors.Is(err, ErrDigest) {
		t.Errorf("got %v, want %v", err, ErrDigest)
	}

	if _, _, err := Decode([]byte("not gzip")); err == nil {
		t.Error("expected error for invalid blob")
	}
}
