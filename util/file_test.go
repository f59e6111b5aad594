// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCleanAndExpandPath(t *testing.T) {
	home := homeDir("")
	t.Setenv("GOVHUB_TEST_DIR", "/var/govhub")

	var tests = []struct {
		name string
		path string
		want string
	}{
		{"empty", "", ""},
		{"clean", "/a/b/../c/", "/a/c"},
		{"env", "$GOVHUB_TEST_DIR/data", "/var/govhub/data"},
		{"home", "~", home},
		{"home subdir", "~/data/store", filepath.Join(home, "data", "store")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanAndExpandPath(tc.path)
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLoadJSONFile(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "body.json")
	if FileExists(fn) {
		t.Fatal("file exists before it was written")
	}
	if err := os.WriteFile(fn, []byte(`{"title":"x","n":2}`), 0600); err != nil {
		t.Fatal(err)
	}
	if !FileExists(fn) {
		t.Fatal("file not found")
	}

	var v struct {
		Title string `json:"title"`
		N     int    `json:"n"`
	}
	if err := LoadJSONFile(fn, &v); err != nil {
		t.Fatal(err)
	}
	if v.Title != "x" || v.N != 2 {
		t.Errorf("got %+v", v)
	}

	if err := LoadJSONFile(filepath.Join(dir, "missing.json"), &v); err == nil {
		t.Error("missing file loaded")
	}
}
