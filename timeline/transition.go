// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package timeline

import (
	"fmt"

	v1 "github.com/decred/govhub/api/v1"
)

// TransitionError is returned when a requested timeline status can not be
// reached from the current status.
type TransitionError struct {
	From   string
	To     string
	Reason string
}

// Error satisfies the error interface.
func (e TransitionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid transition %v -> %v", e.From, e.To)
	}
	return fmt.Sprintf("invalid transition %v -> %v: %v",
		e.From, e.To, e.Reason)
}

// Editor describes the standing of the account that requests a proposal
// timeline change.
type Editor struct {
	// Privileged is set for moderators and for the system account.
	Privileged bool

	// Author is set when the editor authored the proposal.
	Author bool
}

// authorMayChange returns whether a non-privileged author may move a proposal
// from one status to the other.
func authorMayChange(from, to TimelineStatus) bool {
	if from.IsDraft() && (to.IsDraft() || to.IsEmptyReview()) {
		return true
	}
	return from.CanBeCancelled() && to.IsCancelled()
}

// CheckProposalTransition verifies that the editor may move a proposal from
// one timeline status to the other. Identical statuses are not a transition
// and are always allowed. hasSupervisor reports whether the proposal body
// that carries the new status names a supervisor.
func CheckProposalTransition(from, to TimelineStatus, e Editor, hasSupervisor bool) error {
	if from.Equal(to) {
		return nil
	}
	if err := to.Validate(); err != nil {
		return err
	}
	if !e.Privileged && !(e.Author && authorMayChange(from, to)) {
		return v1.NewUserErr(v1.ErrCodePermissionDenied,
			"timeline change %v -> %v requires moderator", from.Status,
			to.Status)
	}
	if to.RequiresSupervisor() && !hasSupervisor {
		return TransitionError{
			From:   string(from.Status),
			To:     string(to.Status),
			Reason: "supervisor required",
		}
	}
	return nil
}

// CheckRFPTransition verifies that an RFP may move from one timeline status to
// the other. Identical statuses are not a transition. Selecting a proposal
// requires at least one linked proposal that was approved.
func CheckRFPTransition(from, to RFPTimelineStatus, hasApprovedProposal bool) error {
	if from.Status == to.Status {
		return nil
	}
	if err := to.Validate(); err != nil {
		return err
	}
	if _, ok := rfpStatusChanges[from.Status][to.Status]; !ok {
		return TransitionError{
			From: string(from.Status),
			To:   string(to.Status),
		}
	}
	if to.Status == RFPStatusProposalSelected && !hasApprovedProposal {
		return TransitionError{
			From:   string(from.Status),
			To:     string(to.Status),
			Reason: "no approved linked proposal",
		}
	}
	return nil
}
