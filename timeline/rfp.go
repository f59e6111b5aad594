// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package timeline

import (
	v1 "github.com/decred/govhub/api/v1"
)

// RFPStatusT represents an RFP timeline status.
type RFPStatusT string

const (
	RFPStatusAcceptingSubmissions RFPStatusT = "ACCEPTING_SUBMISSIONS"
	RFPStatusEvaluation           RFPStatusT = "EVALUATION"
	RFPStatusProposalSelected     RFPStatusT = "PROPOSAL_SELECTED"
	RFPStatusCancelled            RFPStatusT = "CANCELLED"
)

// RFPStatuses contains the human readable RFP timeline statuses.
var RFPStatuses = map[RFPStatusT]string{
	RFPStatusAcceptingSubmissions: "accepting submissions",
	RFPStatusEvaluation:           "evaluation",
	RFPStatusProposalSelected:     "proposal selected",
	RFPStatusCancelled:            "cancelled",
}

// rfpStatusChanges contains the allowed RFP timeline status changes.
var rfpStatusChanges = map[RFPStatusT]map[RFPStatusT]struct{}{
	RFPStatusAcceptingSubmissions: {
		RFPStatusEvaluation:       {},
		RFPStatusProposalSelected: {},
		RFPStatusCancelled:        {},
	},
	RFPStatusEvaluation: {
		RFPStatusProposalSelected: {},
		RFPStatusCancelled:        {},
	},
	RFPStatusProposalSelected: {
		RFPStatusCancelled: {},
	},
	// Cancelled is terminal
	RFPStatusCancelled: {},
}

// RFPTimelineStatus is the lifecycle status of an RFP.
type RFPTimelineStatus struct {
	Status RFPStatusT `json:"status"`
}

// AcceptingSubmissions returns the initial RFP timeline status.
func AcceptingSubmissions() RFPTimelineStatus {
	return RFPTimelineStatus{Status: RFPStatusAcceptingSubmissions}
}

// Validate verifies that the status is known.
func (t RFPTimelineStatus) Validate() error {
	if _, ok := RFPStatuses[t.Status]; !ok {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"unknown rfp timeline status %q", t.Status)
	}
	return nil
}

// IsAcceptingSubmissions returns whether proposals may currently be linked to
// or unlinked from the RFP by non-privileged editors.
func (t RFPTimelineStatus) IsAcceptingSubmissions() bool {
	return t.Status == RFPStatusAcceptingSubmissions
}

// IsCancelled returns whether the RFP has been cancelled.
func (t RFPTimelineStatus) IsCancelled() bool {
	return t.Status == RFPStatusCancelled
}

// String satisfies the fmt.Stringer interface.
func (t RFPTimelineStatus) String() string {
	return string(t.Status)
}
