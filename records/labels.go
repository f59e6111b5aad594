// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"sort"
	"strings"

	v1 "github.com/decred/govhub/api/v1"
)

// NormalizeLabels returns the provided labels sorted and with duplicates
// removed. The result is never nil.
func NormalizeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	r := make([]string, 0, len(labels))
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		r = append(r, l)
	}
	sort.Strings(r)
	return r
}

// ValidateLabels verifies that no label is empty or padded with whitespace.
func ValidateLabels(labels []string) error {
	for _, l := range labels {
		if l == "" || strings.TrimSpace(l) != l {
			return v1.NewUserErr(v1.ErrCodePayloadInvalid,
				"invalid label %q", l)
		}
	}
	return nil
}

// LabelsDiff returns the labels that are only in b (added) and the labels that
// are only in a (removed). Both results are sorted.
func LabelsDiff(a, b []string) (added, removed []string) {
	inA := make(map[string]struct{}, len(a))
	for _, l := range a {
		inA[l] = struct{}{}
	}
	inB := make(map[string]struct{}, len(b))
	for _, l := range b {
		inB[l] = struct{}{}
	}
	added = make([]string, 0)
	removed = make([]string, 0)
	for l := range inB {
		if _, ok := inA[l]; !ok {
			added = append(added, l)
		}
	}
	for l := range inA {
		if _, ok := inB[l]; !ok {
			removed = append(removed, l)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// EqualLabels returns whether both label sets contain the same labels.
func EqualLabels(a, b []string) bool {
	added, removed := LabelsDiff(a, b)
	return len(added) == 0 && len(removed) == 0
}
