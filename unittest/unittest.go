// Copyright (c) 2021-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package unittest contains helpers that are shared by the govhub unit tests.
package unittest

import (
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// mapKey returns the integer value of an integer map key.
func mapKey(k reflect.Value) (uint64, error) {
	switch k.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return k.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Int64:
		return uint64(k.Int()), nil
	}
	return 0, errors.Errorf("unsupported key type: %v", k.Kind())
}

// TestGenericConstMap verifies that the keys of a map of integer constants to
// their descriptions are exactly 0 through last-1.
func TestGenericConstMap(constMap interface{}, last uint64) error {
	v := reflect.ValueOf(constMap)
	if v.Kind() != reflect.Map {
		return errors.Errorf("not a map: %T", constMap)
	}
	if uint64(v.Len()) != last {
		return errors.Errorf("map has %v entries, want %v", v.Len(), last)
	}
	seen := make(map[uint64]bool, v.Len())
	for _, k := range v.MapKeys() {
		n, err := mapKey(k)
		if err != nil {
			return err
		}
		if n >= last {
			return errors.Errorf("key %v out of range [0, %v)", n, last)
		}
		seen[n] = true
	}
	for i := uint64(0); i < last; i++ {
		if !seen[i] {
			return errors.Errorf("no description for %v", i)
		}
	}
	return nil
}

// DeepEqual returns the differences between got and want, followed by a
// unified diff of their dumps. It returns "" when they are equal.
func DeepEqual(got, want interface{}) string {
	diffs := deep.Equal(got, want)
	if diffs == nil {
		return ""
	}
	dump, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(spew.Sdump(want)),
		B:        difflib.SplitLines(spew.Sdump(got)),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		dump = err.Error()
	}
	return strings.Join(diffs, "\n") + "\n" + dump
}
