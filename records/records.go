// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package records contains the versioned bodies, the snapshots and the
// entities that govhub stores: proposals, RFPs and posts.
//
// Every body is wrapped in a versioned envelope. The envelope encodes the
// wrapped body with a version tag and always converts to the latest body
// version on read. Conversions only go forward. An unknown version tag is a
// schema mismatch.
package records

import (
	v1 "github.com/decred/govhub/api/v1"
)

func schemaMismatch(kind, version string) error {
	return v1.NewUserErr(v1.ErrCodeSchemaMismatch, "%v version %q",
		kind, version)
}
