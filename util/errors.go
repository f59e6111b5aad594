// Copyright (c) 2021-2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"fmt"

	"github.com/pkg/errors"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// StackTrace returns the stack trace of the deepest pkg/errors error found in
// the chain of the provided error. The returned bool is false when no error in
// the chain carries a stack trace, which is the case for stdlib errors and for
// user errors.
func StackTrace(err error) (string, bool) {
	var (
		st    stackTracer
		found bool
	)
	for e := err; e != nil; e = errors.Unwrap(e) {
		if s, ok := e.(stackTracer); ok {
			st = s
			found = true
		}
	}
	if !found {
		return "", false
	}
	return fmt.Sprintf("%+v\n", st.StackTrace()), true
}
