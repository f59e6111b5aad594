// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	"sort"

	"github.com/decred/govhub/access"
	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/notify"
	"github.com/decred/govhub/records"
	"github.com/decred/govhub/timeline"
)

// AddProposal adds a new proposal authored by the caller. New proposals
// start as a draft or as a review without review progress. A proposal that
// is linked to an RFP takes the labels of the RFP.
func (g *Govhub) AddProposal(body records.ProposalBody, labels []string) (records.ProposalID, error) {
	var id records.ProposalID
	err := g.update(func(t *txn) error {
		var err error
		id, err = g.addProposal(t, g.env.Caller(), body, labels)
		return err
	})
	return id, err
}

func (g *Govhub) addProposal(t *txn, author string, body records.ProposalBody, labels []string) (records.ProposalID, error) {
	if err := body.Validate(); err != nil {
		return 0, err
	}
	status := body.Status()
	if !status.IsDraft() && !status.IsEmptyReview() {
		return 0, timeline.TransitionError{
			From:   "none",
			To:     string(status.Status),
			Reason: "new proposals start as draft or review",
		}
	}
	if err := checkCategory(t, body.Category); err != nil {
		return 0, err
	}

	n, err := t.nextID(keyProposalCount)
	if err != nil {
		return 0, err
	}
	id := records.ProposalID(n)

	if body.LinkedRFP != nil {
		rfp, err := t.rfp(*body.LinkedRFP)
		if err != nil {
			return 0, err
		}
		if err := g.assertCanLinkUnlink(t, author, rfp); err != nil {
			return 0, err
		}
		rfp, err = g.linkProposal(t, author, rfp.ID, id)
		if err != nil {
			return 0, err
		}
		labels = rfp.Snapshot.Labels
	}
	labels = records.NormalizeLabels(labels)
	if err := records.ValidateLabels(labels); err != nil {
		return 0, err
	}
	if err := g.checkLabelDelta(t, author, nil, labels); err != nil {
		return 0, err
	}

	p := records.Proposal{
		ID:                      id,
		AuthorID:                author,
		SocialDBPostBlockHeight: g.env.BlockHeight(),
		Snapshot: records.ProposalSnapshot{
			EditorID:  author,
			Timestamp: g.env.Now(),
			Labels:    labels,
			Body:      records.NewVersionedProposalBody(body),
		},
	}
	if err := t.putProposal(&p); err != nil {
		return 0, err
	}
	err = t.reindexLabels(keyLabelProposals, n, nil, labels)
	if err != nil {
		return 0, err
	}
	if err := t.indexAdd(keyAuthorProposals(author), n); err != nil {
		return 0, err
	}

	log.Infof("Proposal %v added by %v", id, author)
	log.Tracef("%v", dump(p))

	t.notify(proposalNotification(notify.TypeProposalAdded, author,
		g.env.Now(), id, body))

	return id, nil
}

// EditProposal replaces the body and labels of a proposal.
func (g *Govhub) EditProposal(id records.ProposalID, body records.ProposalBody, labels []string) error {
	return g.update(func(t *txn) error {
		return g.editProposal(t, g.env.Caller(), id, body, labels)
	})
}

// EditProposalTimeline changes the timeline of a proposal.
func (g *Govhub) EditProposalTimeline(id records.ProposalID, status timeline.VersionedTimelineStatus) error {
	return g.update(func(t *txn) error {
		p, err := t.proposal(id)
		if err != nil {
			return err
		}
		body := p.Body()
		body.Timeline = status
		return g.editProposal(t, g.env.Caller(), id, body, p.Snapshot.Labels)
	})
}

// EditProposalLinkedRFP links the proposal to an RFP. The proposal is
// unlinked when rfp is nil.
func (g *Govhub) EditProposalLinkedRFP(id records.ProposalID, rfp *records.RFPID) error {
	return g.update(func(t *txn) error {
		p, err := t.proposal(id)
		if err != nil {
			return err
		}
		body := p.Body()
		body.LinkedRFP = rfp
		return g.editProposal(t, g.env.Caller(), id, body, p.Snapshot.Labels)
	})
}

// canEditProposal returns whether the editor may edit the proposal.
// Privileged accounts and the author may edit. Other accounts need the edit
// post action on the current labels of the proposal.
func (g *Govhub) canEditProposal(members access.MembersList, editor string, p *records.Proposal) bool {
	if editor == p.AuthorID || g.isPrivileged(members, editor) {
		return true
	}
	return members.CheckPermissions(editor, p.Snapshot.Labels).
		Has(access.ActionEditPost)
}

// editProposal is the single edit path of proposals. It checks the edit
// permission, the timeline transition, the category and the label delta,
// reconciles the RFP linkage and installs the new snapshot.
func (g *Govhub) editProposal(t *txn, editor string, id records.ProposalID, body records.ProposalBody, labels []string) error {
	p, err := t.proposal(id)
	if err != nil {
		return err
	}
	members, err := t.members()
	if err != nil {
		return err
	}
	if !g.canEditProposal(members, editor, p) {
		return v1.NewUserErr(v1.ErrCodePermissionDenied,
			"%v may not edit proposal %v", editor, id)
	}
	if err := body.Validate(); err != nil {
		return err
	}

	old := p.Body()
	from, to := old.Status(), body.Status()
	if !from.Equal(to) {
		e := timeline.Editor{
			Privileged: g.isPrivileged(members, editor),
			Author:     editor == p.AuthorID,
		}
		err := timeline.CheckProposalTransition(from, to, e,
			body.Supervisor != nil)
		if err != nil {
			return err
		}
	} else if to.RequiresSupervisor() && old.Supervisor != nil &&
		body.Supervisor == nil {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"supervisor required in status %v", to.Status)
	}
	if body.Category != old.Category {
		if err := checkCategory(t, body.Category); err != nil {
			return err
		}
	}

	if !sameRFP(old.LinkedRFP, body.LinkedRFP) {
		if err := g.relinkProposal(t, editor, id, old.LinkedRFP,
			body.LinkedRFP); err != nil {
			return err
		}
	}
	if body.LinkedRFP != nil {
		rfp, err := t.rfp(*body.LinkedRFP)
		if err != nil {
			return err
		}
		labels = rfp.Snapshot.Labels
	}
	labels = records.NormalizeLabels(labels)
	if err := records.ValidateLabels(labels); err != nil {
		return err
	}
	if err := g.checkLabelDelta(t, editor, p.Snapshot.Labels,
		labels); err != nil {
		return err
	}

	oldLabels := p.Snapshot.Labels
	p.Push(records.ProposalSnapshot{
		EditorID:  editor,
		Timestamp: g.env.Now(),
		Labels:    labels,
		Body:      records.NewVersionedProposalBody(body),
	})
	if err := t.putProposal(p); err != nil {
		return err
	}
	err = t.reindexLabels(keyLabelProposals, uint64(id), oldLabels, labels)
	if err != nil {
		return err
	}

	log.Infof("Proposal %v edited by %v", id, editor)
	log.Debugf("Proposal %v: %v -> %v labels %v", id, from, to, labels)

	t.notify(proposalNotification(notify.TypeProposalEdited, editor,
		g.env.Now(), id, body))

	return nil
}

func sameRFP(a, b *records.RFPID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// proposalNotification returns the notification of a proposal change. The
// mentions in the summary and description, the supervisor and the requested
// sponsor are subscribed.
func proposalNotification(typ notify.Type, actor string, ts int64, id records.ProposalID, body records.ProposalBody) notify.Notification {
	var supervisor string
	if body.Supervisor != nil {
		supervisor = *body.Supervisor
	}
	subs := notify.Subscribers(actor,
		[]string{body.Summary, body.Description},
		supervisor, body.RequestedSponsor)
	return notify.New(typ, notify.EntityProposal, uint64(id), actor, ts,
		subs)
}

// Proposal returns a proposal.
func (g *Govhub) Proposal(id records.ProposalID) (*records.Proposal, error) {
	var p *records.Proposal
	err := g.view(func(t *txn) error {
		var err error
		p, err = t.proposal(id)
		return err
	})
	return p, err
}

// Proposals returns every proposal ordered by id.
func (g *Govhub) Proposals() ([]records.Proposal, error) {
	var ps []records.Proposal
	err := g.view(func(t *txn) error {
		var err error
		ps, err = t.proposals()
		return err
	})
	return ps, err
}

func toProposalIDs(ids []uint64) []records.ProposalID {
	r := make([]records.ProposalID, 0, len(ids))
	for _, v := range ids {
		r = append(r, records.ProposalID(v))
	}
	return r
}

// ProposalIDsByLabel returns the ids of the proposals that currently carry
// the label.
func (g *Govhub) ProposalIDsByLabel(label string) ([]records.ProposalID, error) {
	var ids []uint64
	err := g.view(func(t *txn) error {
		var err error
		ids, err = t.index(keyLabelProposals(label))
		return err
	})
	return toProposalIDs(ids), err
}

// ProposalIDsByAuthor returns the ids of the proposals authored by the
// account.
func (g *Govhub) ProposalIDsByAuthor(account string) ([]records.ProposalID, error) {
	var ids []uint64
	err := g.view(func(t *txn) error {
		var err error
		ids, err = t.index(keyAuthorProposals(account))
		return err
	})
	return toProposalIDs(ids), err
}

// ProposalLabels returns the sorted labels that are in use by at least one
// proposal.
func (g *Govhub) ProposalLabels() ([]string, error) {
	var labels []string
	err := g.view(func(t *txn) error {
		known, err := t.indexedLabels()
		if err != nil {
			return err
		}
		for _, l := range known {
			ids, err := t.index(keyLabelProposals(l))
			if err != nil {
				return err
			}
			if len(ids) > 0 {
				labels = append(labels, l)
			}
		}
		return nil
	})
	sort.Strings(labels)
	return labels, err
}

// ProposalSnapshotAt returns the snapshot of the proposal that was current at
// the provided unix nanosecond timestamp.
func (g *Govhub) ProposalSnapshotAt(id records.ProposalID, timestamp int64) (*records.ProposalSnapshot, error) {
	var s *records.ProposalSnapshot
	err := g.view(func(t *txn) error {
		p, err := t.proposal(id)
		if err != nil {
			return err
		}
		snapshot, ok := p.SnapshotAt(timestamp)
		if !ok {
			return v1.NewUserErr(v1.ErrCodeNotFound,
				"proposal %v at %v", id, timestamp)
		}
		s = &snapshot
		return nil
	})
	return s, err
}

// IsAllowedToEditProposal returns whether the account may edit the proposal.
func (g *Govhub) IsAllowedToEditProposal(id records.ProposalID, account string) (bool, error) {
	var ok bool
	err := g.view(func(t *txn) error {
		p, err := t.proposal(id)
		if err != nil {
			return err
		}
		members, err := t.members()
		if err != nil {
			return err
		}
		ok = g.canEditProposal(members, account, p)
		return nil
	})
	return ok, err
}
