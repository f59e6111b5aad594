// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
)

// formatJSON returns a pretty printed JSON string for the provided structure.
func formatJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("json error: %v", err)
	}
	return string(b)
}

// printReply prints a command reply. Raw JSON is written to stdout when the
// json option is set.
func printReply(v interface{}) {
	if cfg != nil && cfg.JSON {
		b, err := json.Marshal(v)
		if err != nil {
			fmt.Printf("json error: %v\n", err)
			return
		}
		fmt.Printf("%s\n", b)
		return
	}
	log.Infof("%v", formatJSON(v))
}

// snapshotDiff returns the unified diff between the JSON encodings of two
// snapshots.
func snapshotDiff(fromName, toName string, from, to interface{}) (string, error) {
	a, err := json.MarshalIndent(from, "", "  ")
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(to, "", "  ")
	if err != nil {
		return "", err
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a) + "\n"),
		B:        difflib.SplitLines(string(b) + "\n"),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	})
}

// parseID parses a decimal entity id.
func parseID(s string, bitSize int) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, bitSize)
	if err != nil {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return id, nil
}
