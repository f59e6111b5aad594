// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package records

import (
	"encoding/json"

	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/timeline"
	"github.com/decred/govhub/util"
)

// RFPBodyV0 is the first RFP body version.
type RFPBodyV0 struct {
	Name               string                     `json:"name"`
	Summary            string                     `json:"summary"`
	Description        string                     `json:"description"`
	Timeline           timeline.RFPTimelineStatus `json:"timeline"`
	SubmissionDeadline int64                      `json:"submission_deadline"`
}

// RFPBody is the latest RFP body version.
type RFPBody = RFPBodyV0

// Validate verifies the body fields.
func (b RFPBodyV0) Validate() error {
	if b.Name == "" {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid, "name is empty")
	}
	return b.Timeline.Validate()
}

// RFPBodyVersion is the version tag of an RFP body.
type RFPBodyVersion string

const (
	RFPBodyVersion0 RFPBodyVersion = "V0"

	rfpBodyVersionTag = "rfp_body_version"
)

// VersionedRFPBody wraps an RFP body of any known version.
type VersionedRFPBody struct {
	Version RFPBodyVersion
	V0      *RFPBodyV0
}

// NewVersionedRFPBody wraps the provided body as the latest version.
func NewVersionedRFPBody(b RFPBody) VersionedRFPBody {
	return VersionedRFPBody{Version: RFPBodyVersion0, V0: &b}
}

// Latest returns the wrapped body converted to the latest version.
func (v VersionedRFPBody) Latest() RFPBody {
	if v.V0 != nil {
		return *v.V0
	}
	return RFPBody{}
}

// MarshalJSON satisfies the json.Marshaler interface.
func (v VersionedRFPBody) MarshalJSON() ([]byte, error) {
	if v.Version != RFPBodyVersion0 {
		return nil, schemaMismatch("rfp body", string(v.Version))
	}
	return util.MarshalTagged(rfpBodyVersionTag, string(v.Version), v.V0)
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (v *VersionedRFPBody) UnmarshalJSON(b []byte) error {
	version, err := util.PeekTag(b, rfpBodyVersionTag)
	if err != nil {
		return err
	}
	if RFPBodyVersion(version) != RFPBodyVersion0 {
		return schemaMismatch("rfp body", version)
	}
	var body RFPBodyV0
	if err := json.Unmarshal(b, &body); err != nil {
		return err
	}
	*v = NewVersionedRFPBody(body)
	return nil
}

// RFPSnapshot is one version of an RFP. The linked proposals are the
// proposals that name this RFP as their linked RFP.
type RFPSnapshot struct {
	EditorID        string           `json:"editor_id"`
	Timestamp       int64            `json:"timestamp"`
	BlockHeight     uint64           `json:"block_height"`
	Labels          []string         `json:"labels"`
	Body            VersionedRFPBody `json:"body"`
	LinkedProposals ProposalIDs      `json:"linked_proposals"`
}

// RFP is a request for proposals.
type RFP struct {
	ID                      RFPID         `json:"id"`
	AuthorID                string        `json:"author_id"`
	SocialDBPostBlockHeight uint64        `json:"social_db_post_block_height"`
	Snapshot                RFPSnapshot   `json:"snapshot"`
	SnapshotHistory         []RFPSnapshot `json:"snapshot_history"`
}

// Push installs a new current snapshot and moves the prior one to the
// history.
func (r *RFP) Push(s RFPSnapshot) {
	r.SnapshotHistory = append(r.SnapshotHistory, r.Snapshot)
	r.Snapshot = s
}

// Body returns the current body in its latest version.
func (r *RFP) Body() RFPBody {
	return r.Snapshot.Body.Latest()
}

// SnapshotAt returns the snapshot that was current at the provided block
// height. False is returned when the RFP did not exist yet.
func (r *RFP) SnapshotAt(blockHeight uint64) (RFPSnapshot, bool) {
	if r.Snapshot.BlockHeight <= blockHeight {
		return r.Snapshot, true
	}
	for i := len(r.SnapshotHistory) - 1; i >= 0; i-- {
		if r.SnapshotHistory[i].BlockHeight <= blockHeight {
			return r.SnapshotHistory[i], true
		}
	}
	return RFPSnapshot{}, false
}
