// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/notify"
	"github.com/decred/govhub/records"
	"github.com/decred/govhub/timeline"
)

// AddRFP adds a new RFP. RFPs start out accepting submissions. The caller
// must be privileged.
func (g *Govhub) AddRFP(body records.RFPBody, labels []string) (records.RFPID, error) {
	var id records.RFPID
	err := g.update(func(t *txn) error {
		if _, err := g.requirePrivilege(t); err != nil {
			return err
		}
		caller := g.env.Caller()

		if body.Timeline.Status == "" {
			body.Timeline = timeline.AcceptingSubmissions()
		}
		if !body.Timeline.IsAcceptingSubmissions() {
			return timeline.TransitionError{
				From:   "none",
				To:     string(body.Timeline.Status),
				Reason: "new rfps accept submissions",
			}
		}
		if err := body.Validate(); err != nil {
			return err
		}
		labels = records.NormalizeLabels(labels)
		if err := records.ValidateLabels(labels); err != nil {
			return err
		}
		if err := checkGlobalLabels(t, labels); err != nil {
			return err
		}

		n, err := t.nextID(keyRFPCount)
		if err != nil {
			return err
		}
		id = records.RFPID(n)
		r := records.RFP{
			ID:                      id,
			AuthorID:                caller,
			SocialDBPostBlockHeight: g.env.BlockHeight(),
			Snapshot: records.RFPSnapshot{
				EditorID:        caller,
				Timestamp:       g.env.Now(),
				BlockHeight:     g.env.BlockHeight(),
				Labels:          labels,
				Body:            records.NewVersionedRFPBody(body),
				LinkedProposals: records.NewProposalIDs(),
			},
		}
		if err := t.putRFP(&r); err != nil {
			return err
		}
		err = t.reindexLabels(keyLabelRFPs, n, nil, labels)
		if err != nil {
			return err
		}

		log.Infof("RFP %v added by %v", id, caller)
		log.Tracef("%v", dump(r))

		t.notify(rfpNotification(notify.TypeRFPAdded, caller, g.env.Now(),
			id, body))

		return nil
	})
	return id, err
}

// EditRFP replaces the body and labels of an RFP. A label change is
// propagated to every linked proposal. The caller must be privileged.
func (g *Govhub) EditRFP(id records.RFPID, body records.RFPBody, labels []string) error {
	return g.update(func(t *txn) error {
		return g.editRFP(t, id, body, labels)
	})
}

// EditRFPTimeline changes the timeline of an RFP. The caller must be
// privileged.
func (g *Govhub) EditRFPTimeline(id records.RFPID, status timeline.RFPTimelineStatus) error {
	return g.update(func(t *txn) error {
		r, err := t.rfp(id)
		if err != nil {
			return err
		}
		body := r.Body()
		body.Timeline = status
		return g.editRFP(t, id, body, r.Snapshot.Labels)
	})
}

func (g *Govhub) editRFP(t *txn, id records.RFPID, body records.RFPBody, labels []string) error {
	if _, err := g.requirePrivilege(t); err != nil {
		return err
	}
	editor := g.env.Caller()

	r, err := t.rfp(id)
	if err != nil {
		return err
	}
	if err := body.Validate(); err != nil {
		return err
	}
	from, to := r.Body().Timeline, body.Timeline
	if from.Status != to.Status {
		approved, err := hasApprovedProposal(t, r.Snapshot.LinkedProposals)
		if err != nil {
			return err
		}
		if err := timeline.CheckRFPTransition(from, to, approved); err != nil {
			return err
		}
	}
	labels = records.NormalizeLabels(labels)
	if err := records.ValidateLabels(labels); err != nil {
		return err
	}
	if err := checkGlobalLabels(t, labels); err != nil {
		return err
	}

	oldLabels := r.Snapshot.Labels
	r.Push(records.RFPSnapshot{
		EditorID:        editor,
		Timestamp:       g.env.Now(),
		BlockHeight:     g.env.BlockHeight(),
		Labels:          labels,
		Body:            records.NewVersionedRFPBody(body),
		LinkedProposals: r.Snapshot.LinkedProposals,
	})
	if err := t.putRFP(r); err != nil {
		return err
	}
	err = t.reindexLabels(keyLabelRFPs, uint64(id), oldLabels, labels)
	if err != nil {
		return err
	}

	log.Infof("RFP %v edited by %v", id, editor)

	// Linked proposals take the labels of the RFP.
	if !records.EqualLabels(oldLabels, labels) {
		for _, pid := range r.Snapshot.LinkedProposals {
			p, err := t.proposal(pid)
			if err != nil {
				return err
			}
			err = g.editProposal(t, editor, pid, p.Body(),
				p.Snapshot.Labels)
			if err != nil {
				return err
			}
		}
	}

	t.notify(rfpNotification(notify.TypeRFPEdited, editor, g.env.Now(),
		id, body))

	return nil
}

// CancelRFP cancels an RFP. The proposals in cancel are cancelled and the
// proposals in unlink are unlinked from the RFP. Every listed proposal must
// be linked to the RFP. The caller must be privileged.
func (g *Govhub) CancelRFP(id records.RFPID, cancel, unlink []records.ProposalID) error {
	return g.update(func(t *txn) error {
		if _, err := g.requirePrivilege(t); err != nil {
			return err
		}
		editor := g.env.Caller()

		r, err := t.rfp(id)
		if err != nil {
			return err
		}
		seen := make(map[records.ProposalID]struct{},
			len(cancel)+len(unlink))
		for _, pid := range append(append([]records.ProposalID{}, cancel...),
			unlink...) {
			if _, ok := seen[pid]; ok {
				return v1.NewUserErr(v1.ErrCodePayloadInvalid,
					"proposal %v listed twice", pid)
			}
			seen[pid] = struct{}{}
			if !r.Snapshot.LinkedProposals.Has(pid) {
				return v1.NewUserErr(v1.ErrCodeInvariantViolation,
					"proposal %v is not linked to rfp %v", pid, id)
			}
		}

		body := r.Body()
		body.Timeline = timeline.RFPTimelineStatus{
			Status: timeline.RFPStatusCancelled,
		}
		if err := g.editRFP(t, id, body, r.Snapshot.Labels); err != nil {
			return err
		}

		for _, pid := range cancel {
			p, err := t.proposal(pid)
			if err != nil {
				return err
			}
			pb := p.Body()
			status := timeline.Cancelled(pb.Status().ReviewState())
			pb.Timeline = timeline.NewVersionedTimelineStatus(status)
			err = g.editProposal(t, editor, pid, pb, p.Snapshot.Labels)
			if err != nil {
				return err
			}
		}
		for _, pid := range unlink {
			p, err := t.proposal(pid)
			if err != nil {
				return err
			}
			pb := p.Body()
			pb.LinkedRFP = nil
			err = g.editProposal(t, editor, pid, pb, p.Snapshot.Labels)
			if err != nil {
				return err
			}
		}

		log.Infof("RFP %v cancelled by %v: cancelled %v unlinked %v",
			id, editor, cancel, unlink)

		return nil
	})
}

// rfpNotification returns the notification of an RFP change. The mentions
// in the summary and description are subscribed.
func rfpNotification(typ notify.Type, actor string, ts int64, id records.RFPID, body records.RFPBody) notify.Notification {
	subs := notify.Subscribers(actor,
		[]string{body.Summary, body.Description})
	return notify.New(typ, notify.EntityRFP, uint64(id), actor, ts, subs)
}

// RFP returns an RFP.
func (g *Govhub) RFP(id records.RFPID) (*records.RFP, error) {
	var r *records.RFP
	err := g.view(func(t *txn) error {
		var err error
		r, err = t.rfp(id)
		return err
	})
	return r, err
}

// RFPs returns every RFP ordered by id.
func (g *Govhub) RFPs() ([]records.RFP, error) {
	var rs []records.RFP
	err := g.view(func(t *txn) error {
		var err error
		rs, err = t.rfps()
		return err
	})
	return rs, err
}

// RFPIDsByLabel returns the ids of the RFPs that currently carry the label.
func (g *Govhub) RFPIDsByLabel(label string) ([]records.RFPID, error) {
	var ids []uint64
	err := g.view(func(t *txn) error {
		var err error
		ids, err = t.index(keyLabelRFPs(label))
		return err
	})
	r := make([]records.RFPID, 0, len(ids))
	for _, v := range ids {
		r = append(r, records.RFPID(v))
	}
	return r, err
}

// RFPSnapshotAt returns the snapshot of the RFP that was current at the
// provided block height.
func (g *Govhub) RFPSnapshotAt(id records.RFPID, blockHeight uint64) (*records.RFPSnapshot, error) {
	var s *records.RFPSnapshot
	err := g.view(func(t *txn) error {
		r, err := t.rfp(id)
		if err != nil {
			return err
		}
		snapshot, ok := r.SnapshotAt(blockHeight)
		if !ok {
			return v1.NewUserErr(v1.ErrCodeNotFound,
				"rfp %v at block %v", id, blockHeight)
		}
		s = &snapshot
		return nil
	})
	return s, err
}
