// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"regexp"
	"strings"
)

var regexpMention = regexp.MustCompile(`@([A-Za-z0-9_.\-]+)`)

// ParseMentions returns the account names that are mentioned in the provided
// text using the @account notation. Trailing dots are treated as punctuation
// and stripped. The returned names are unique and ordered by first
// appearance.
func ParseMentions(text string) []string {
	matches := regexpMention.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	var (
		seen     = make(map[string]struct{}, len(matches))
		mentions = make([]string, 0, len(matches))
	)
	for _, m := range matches {
		name := strings.TrimRight(m[1], ".")
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		mentions = append(mentions, name)
	}
	return mentions
}

// Dedup returns the provided strings with empty and repeated entries removed.
// The order of first appearance is preserved.
func Dedup(s []string) []string {
	seen := make(map[string]struct{}, len(s))
	r := make([]string, 0, len(s))
	for _, v := range s {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		r = append(r, v)
	}
	return r
}
