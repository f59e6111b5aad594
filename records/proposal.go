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

// Currency is the currency a sponsorship is paid in.
type Currency string

const (
	CurrencyNEAR  Currency = "NEAR"
	CurrencyUSDT  Currency = "USDT"
	CurrencyUSDC  Currency = "USDC"
	CurrencyOther Currency = "OTHER"
)

// Currencies contains the supported currencies.
var Currencies = map[Currency]string{
	CurrencyNEAR:  "NEAR",
	CurrencyUSDT:  "Tether USD",
	CurrencyUSDC:  "USD Coin",
	CurrencyOther: "other",
}

// ProposalContent contains the proposal body fields that every body version
// shares.
type ProposalContent struct {
	Name                               string       `json:"name"`
	Category                           string       `json:"category"`
	Summary                            string       `json:"summary"`
	Description                        string       `json:"description"`
	LinkedProposals                    []ProposalID `json:"linked_proposals"`
	RequestedSponsorshipUSDAmount      string       `json:"requested_sponsorship_usd_amount"`
	RequestedSponsorshipPaidInCurrency Currency     `json:"requested_sponsorship_paid_in_currency"`
	ReceiverAccount                    string       `json:"receiver_account"`
	RequestedSponsor                   string       `json:"requested_sponsor"`
	Supervisor                         *string      `json:"supervisor"`
}

func (c ProposalContent) clone() ProposalContent {
	r := c
	if c.LinkedProposals != nil {
		r.LinkedProposals = append([]ProposalID{}, c.LinkedProposals...)
	}
	if c.Supervisor != nil {
		s := *c.Supervisor
		r.Supervisor = &s
	}
	return r
}

// ProposalBodyV0 is the first proposal body version.
type ProposalBodyV0 struct {
	ProposalContent
	Timeline timeline.TimelineStatusV1 `json:"timeline"`
}

// ProposalBodyV1 adds the linked RFP.
type ProposalBodyV1 struct {
	ProposalContent
	LinkedRFP *RFPID                    `json:"linked_rfp"`
	Timeline  timeline.TimelineStatusV1 `json:"timeline"`
}

// ProposalBodyV2 replaces the timeline with a versioned timeline. It is the
// latest proposal body version.
type ProposalBodyV2 struct {
	ProposalContent
	LinkedRFP *RFPID                           `json:"linked_rfp"`
	Timeline  timeline.VersionedTimelineStatus `json:"timeline"`
}

// ProposalBody is the latest proposal body version.
type ProposalBody = ProposalBodyV2

// Upgrade converts the body to the next version. The body is not linked to
// an RFP.
func (b ProposalBodyV0) Upgrade() ProposalBodyV1 {
	return ProposalBodyV1{
		ProposalContent: b.ProposalContent.clone(),
		Timeline:        b.Timeline,
	}
}

// Upgrade converts the body to the next version. The timeline is wrapped as
// a first version timeline.
func (b ProposalBodyV1) Upgrade() ProposalBodyV2 {
	var linked *RFPID
	if b.LinkedRFP != nil {
		id := *b.LinkedRFP
		linked = &id
	}
	return ProposalBodyV2{
		ProposalContent: b.ProposalContent.clone(),
		LinkedRFP:       linked,
		Timeline:        timeline.VersionedTimelineStatusV1(b.Timeline),
	}
}

// Status returns the timeline status of the body in its latest version.
func (b ProposalBodyV2) Status() timeline.TimelineStatus {
	return b.Timeline.Latest()
}

// Validate verifies the body fields.
func (b ProposalBodyV2) Validate() error {
	if b.Name == "" {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid, "name is empty")
	}
	if _, ok := Currencies[b.RequestedSponsorshipPaidInCurrency]; !ok {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"unknown currency %q", b.RequestedSponsorshipPaidInCurrency)
	}
	if b.Supervisor != nil && *b.Supervisor == "" {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"supervisor is empty")
	}
	return b.Status().Validate()
}

// ProposalBodyVersion is the version tag of a proposal body.
type ProposalBodyVersion string

const (
	ProposalBodyVersion0 ProposalBodyVersion = "V0"
	ProposalBodyVersion1 ProposalBodyVersion = "V1"
	ProposalBodyVersion2 ProposalBodyVersion = "V2"

	proposalBodyVersionTag = "proposal_body_version"
)

// VersionedProposalBody wraps a proposal body of any known version. Only the
// field that matches Version is set.
type VersionedProposalBody struct {
	Version ProposalBodyVersion
	V0      *ProposalBodyV0
	V1      *ProposalBodyV1
	V2      *ProposalBodyV2
}

// NewVersionedProposalBody wraps the provided body as the latest version.
func NewVersionedProposalBody(b ProposalBody) VersionedProposalBody {
	return VersionedProposalBody{Version: ProposalBodyVersion2, V2: &b}
}

// Latest returns the wrapped body converted to the latest version.
func (v VersionedProposalBody) Latest() ProposalBody {
	switch {
	case v.V2 != nil:
		return *v.V2
	case v.V1 != nil:
		return v.V1.Upgrade()
	case v.V0 != nil:
		return v.V0.Upgrade().Upgrade()
	}
	return ProposalBody{}
}

// MarshalJSON satisfies the json.Marshaler interface.
func (v VersionedProposalBody) MarshalJSON() ([]byte, error) {
	var inner interface{}
	switch v.Version {
	case ProposalBodyVersion0:
		inner = v.V0
	case ProposalBodyVersion1:
		inner = v.V1
	case ProposalBodyVersion2:
		inner = v.V2
	default:
		return nil, schemaMismatch("proposal body", string(v.Version))
	}
	return util.MarshalTagged(proposalBodyVersionTag, string(v.Version),
		inner)
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (v *VersionedProposalBody) UnmarshalJSON(b []byte) error {
	version, err := util.PeekTag(b, proposalBodyVersionTag)
	if err != nil {
		return err
	}
	r := VersionedProposalBody{Version: ProposalBodyVersion(version)}
	switch r.Version {
	case ProposalBodyVersion0:
		r.V0 = &ProposalBodyV0{}
		err = json.Unmarshal(b, r.V0)
	case ProposalBodyVersion1:
		r.V1 = &ProposalBodyV1{}
		err = json.Unmarshal(b, r.V1)
	case ProposalBodyVersion2:
		r.V2 = &ProposalBodyV2{}
		err = json.Unmarshal(b, r.V2)
	default:
		return schemaMismatch("proposal body", version)
	}
	if err != nil {
		return err
	}
	*v = r
	return nil
}

// ProposalSnapshot is one version of a proposal.
type ProposalSnapshot struct {
	EditorID  string                `json:"editor_id"`
	Timestamp int64                 `json:"timestamp"`
	Labels    []string              `json:"labels"`
	Body      VersionedProposalBody `json:"body"`
}

// Proposal is a funding proposal. The snapshot history holds every prior
// snapshot, oldest first, and excludes the current snapshot.
type Proposal struct {
	ID                      ProposalID         `json:"id"`
	AuthorID                string             `json:"author_id"`
	SocialDBPostBlockHeight uint64             `json:"social_db_post_block_height"`
	Snapshot                ProposalSnapshot   `json:"snapshot"`
	SnapshotHistory         []ProposalSnapshot `json:"snapshot_history"`
}

// Push installs a new current snapshot and moves the prior one to the
// history.
func (p *Proposal) Push(s ProposalSnapshot) {
	p.SnapshotHistory = append(p.SnapshotHistory, p.Snapshot)
	p.Snapshot = s
}

// Body returns the current body in its latest version.
func (p *Proposal) Body() ProposalBody {
	return p.Snapshot.Body.Latest()
}

// SnapshotAt returns the snapshot that was current at the provided
// timestamp. False is returned when the proposal did not exist yet.
func (p *Proposal) SnapshotAt(timestamp int64) (ProposalSnapshot, bool) {
	if p.Snapshot.Timestamp <= timestamp {
		return p.Snapshot, true
	}
	for i := len(p.SnapshotHistory) - 1; i >= 0; i-- {
		if p.SnapshotHistory[i].Timestamp <= timestamp {
			return p.SnapshotHistory[i], true
		}
	}
	return ProposalSnapshot{}, false
}
