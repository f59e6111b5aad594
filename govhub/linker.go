// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/records"
)

// assertCanLinkUnlink verifies that proposals may be linked to or unlinked
// from the RFP by the editor. Only RFPs that accept submissions may change
// their linked proposals unless the editor is privileged.
func (g *Govhub) assertCanLinkUnlink(t *txn, editor string, rfp *records.RFP) error {
	members, err := t.members()
	if err != nil {
		return err
	}
	if g.isPrivileged(members, editor) {
		return nil
	}
	if !rfp.Body().Timeline.IsAcceptingSubmissions() {
		return v1.NewUserErr(v1.ErrCodeInvalidTransition,
			"rfp %v is %v and does not accept submissions", rfp.ID,
			rfp.Body().Timeline)
	}
	return nil
}

// updateRFPLinks installs a new RFP snapshot with the linked proposals
// returned by fn.
func (g *Govhub) updateRFPLinks(t *txn, editor string, id records.RFPID, fn func(records.ProposalIDs) records.ProposalIDs) (*records.RFP, error) {
	rfp, err := t.rfp(id)
	if err != nil {
		return nil, err
	}
	s := rfp.Snapshot
	s.EditorID = editor
	s.Timestamp = g.env.Now()
	s.BlockHeight = g.env.BlockHeight()
	s.LinkedProposals = fn(s.LinkedProposals)
	rfp.Push(s)
	if err := t.putRFP(rfp); err != nil {
		return nil, err
	}
	return rfp, nil
}

// linkProposal adds the proposal to the linked proposals of the RFP.
func (g *Govhub) linkProposal(t *txn, editor string, rfp records.RFPID, proposal records.ProposalID) (*records.RFP, error) {
	log.Debugf("Link proposal %v to rfp %v", proposal, rfp)

	return g.updateRFPLinks(t, editor, rfp,
		func(ids records.ProposalIDs) records.ProposalIDs {
			return ids.Add(proposal)
		})
}

// unlinkProposal removes the proposal from the linked proposals of the RFP.
// The RFP must list the proposal.
func (g *Govhub) unlinkProposal(t *txn, editor string, rfp records.RFPID, proposal records.ProposalID) error {
	r, err := t.rfp(rfp)
	if err != nil {
		return err
	}
	if !r.Snapshot.LinkedProposals.Has(proposal) {
		return v1.NewUserErr(v1.ErrCodeInvariantViolation,
			"rfp %v does not list proposal %v", rfp, proposal)
	}

	log.Debugf("Unlink proposal %v from rfp %v", proposal, rfp)

	_, err = g.updateRFPLinks(t, editor, rfp,
		func(ids records.ProposalIDs) records.ProposalIDs {
			return ids.Remove(proposal)
		})
	return err
}

// relinkProposal moves a proposal from one RFP to another. Either RFP may
// be nil. Both RFPs are checked before any of them is changed.
func (g *Govhub) relinkProposal(t *txn, editor string, proposal records.ProposalID, from, to *records.RFPID) error {
	for _, id := range []*records.RFPID{from, to} {
		if id == nil {
			continue
		}
		rfp, err := t.rfp(*id)
		if err != nil {
			return err
		}
		if err := g.assertCanLinkUnlink(t, editor, rfp); err != nil {
			return err
		}
	}
	if from != nil {
		if err := g.unlinkProposal(t, editor, *from, proposal); err != nil {
			return err
		}
	}
	if to != nil {
		if _, err := g.linkProposal(t, editor, *to, proposal); err != nil {
			return err
		}
	}
	return nil
}

// hasApprovedProposal returns whether any of the proposals was approved.
func hasApprovedProposal(t *txn, ids records.ProposalIDs) (bool, error) {
	for _, id := range ids {
		p, err := t.proposal(id)
		if err != nil {
			return false, err
		}
		if p.Body().Status().WasApproved() {
			return true, nil
		}
	}
	return false, nil
}
