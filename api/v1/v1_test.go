// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package v1

import (
	"testing"

	"github.com/decred/govhub/unittest"
	"github.com/pkg/errors"
)

func TestErrCodes(t *testing.T) {
	err := unittest.TestGenericConstMap(ErrCodes, uint64(ErrCodeLast))
	if err != nil {
		t.Fatal(err)
	}
}

func TestErrCodeOf(t *testing.T) {
	var tests = []struct {
		name string
		err  error
		want ErrCode
	}{
		{"nil", nil, ErrCodeInvalid},
		{"plain error", errors.New("boom"), ErrCodeInvalid},
		{"user error", UserErr{Code: ErrCodeNotFound}, ErrCodeNotFound},
		{"wrapped user error",
			errors.Wrap(UserErr{Code: ErrCodePermissionDenied}, "edit"),
			ErrCodePermissionDenied},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			got := ErrCodeOf(v.err)
			if got != v.want {
				t.Errorf("got %v, want %v", got, v.want)
			}
		})
	}
}
