// Copyright (c) 2017-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// FileExists returns whether a file or directory exists at path. Stat errors
// other than not found count as existing.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// LoadJSONFile decodes the JSON file at path into v. The path is expanded
// first.
func LoadJSONFile(path string, v interface{}) error {
	b, err := os.ReadFile(CleanAndExpandPath(path))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// homeDir returns the home directory of the named user, or of the current
// user when name is empty. It returns "." when the lookup fails.
func homeDir(name string) string {
	var (
		u   *user.User
		err error
	)
	if name == "" {
		u, err = user.Current()
	} else {
		u, err = user.Lookup(name)
	}
	if err != nil || u.HomeDir == "" {
		return "."
	}
	return u.HomeDir
}

// CleanAndExpandPath expands the environment variables of path and a leading
// ~ or ~user, then cleans it.
func CleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}
	path = os.ExpandEnv(path)
	if path[0] != '~' {
		return filepath.Clean(path)
	}

	// Both separators are accepted on windows.
	rest := filepath.ToSlash(path[1:])
	name, tail, _ := strings.Cut(rest, "/")
	return filepath.Join(homeDir(name), filepath.FromSlash(tail))
}
