// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import "testing"

func TestMarshalTagged(t *testing.T) {
	type inner struct {
		A int    `json:"a"`
		B string `json:"b,omitempty"`
	}
	var tests = []struct {
		name    string
		v       interface{}
		want    string
		wantErr bool
	}{
		{"nil", nil, `{"status":"DRAFT"}`, false},
		{"empty object", struct{}{}, `{"status":"DRAFT"}`, false},
		{"object", inner{A: 1, B: "x"},
			`{"status":"DRAFT","a":1,"b":"x"}`, false},
		{"not an object", 5, "", true},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			got, err := MarshalTagged("status", "DRAFT", v.v)
			if (err != nil) != v.wantErr {
				t.Fatalf("got err %v, want err %v", err, v.wantErr)
			}
			if string(got) != v.want {
				t.Errorf("got %s, want %s", got, v.want)
			}
			if err != nil {
				return
			}
			tag, err := PeekTag(got, "status")
			if err != nil {
				t.Fatal(err)
			}
			if tag != "DRAFT" {
				t.Errorf("got tag %v", tag)
			}
		})
	}
}

func TestPeekTagMissing(t *testing.T) {
	tag, err := PeekTag([]byte(`{"a":1}`), "status")
	if err != nil {
		t.Fatal(err)
	}
	if tag != "" {
		t.Errorf("got %v, want empty", tag)
	}
	if _, err := PeekTag([]byte(`{"status":1}`), "status"); err == nil {
		t.Error("expected error for non string tag")
	}
}
