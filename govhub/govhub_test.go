// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package govhub

import (
	"testing"

	"github.com/decred/govhub/access"
	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/notify"
	"github.com/decred/govhub/records"
	"github.com/decred/govhub/store"
	"github.com/decred/govhub/store/localdb"
	"github.com/decred/govhub/timeline"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

const (
	self      = "govhub.near"
	moderator = "mod.near"
	wgMember  = "wg.near"
	alice     = "alice.near"
	bob       = "bob.near"
)

// testNotifier records the notifications it receives.
type testNotifier struct {
	got []notify.Notification
	err error
}

func (n *testNotifier) Notify(x notify.Notification) error {
	n.got = append(n.got, x)
	return n.err
}

type testHub struct {
	*Govhub
	kv       store.BlobKV
	env      *StaticEnv
	notifier *testNotifier
}

// as sets the caller of the following calls and advances the clock.
func (h *testHub) as(account string) *testHub {
	h.env.CallerID = account
	h.env.Timestamp += 10
	h.env.Height++
	return h
}

// newTestHub returns a govhub on a temporary leveldb store. The member graph
// contains a moderators team with a single moderator and a working group
// team that holds the edit post and use labels actions on the wg- labels,
// which are restricted.
func newTestHub(t *testing.T) *testHub {
	t.Helper()

	dir := t.TempDir()
	kv, err := localdb.New(dir, dir)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(kv.Close)

	env := &StaticEnv{
		CallerID:  self,
		SelfID:    self,
		Timestamp: 1000,
		Height:    1,
	}
	n := &testNotifier{}
	h := &testHub{
		Govhub:   New(kv, env, n, false),
		kv:       kv,
		env:      env,
		notifier: n,
	}

	steps := []struct {
		member access.Member
		md     access.MemberMetadata
	}{
		{access.Account(moderator), access.MemberMetadata{}},
		{access.Team(access.TeamModerators), access.MemberMetadata{
			Children: access.NewMemberSet(access.Account(moderator)),
		}},
		{access.Account(wgMember), access.MemberMetadata{}},
		{access.Team("wg"), access.MemberMetadata{
			Permissions: map[access.Rule]access.ActionSet{
				access.StartsWith("wg-"): access.NewActionSet(
					access.ActionEditPost, access.ActionUseLabels),
			},
			Children: access.NewMemberSet(access.Account(wgMember)),
		}},
	}
	for _, v := range steps {
		if err := h.as(self).AddMember(v.member, v.md); err != nil {
			t.Fatalf("add member %v: %v", v.member, err)
		}
	}
	err = h.as(self).SetRestrictedRules(access.RulesList{
		access.StartsWith("wg-"): access.RuleMetadata{
			Description: "working group labels",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func newProposalBody(status timeline.TimelineStatus) records.ProposalBody {
	return records.ProposalBody{
		ProposalContent: records.ProposalContent{
			Name:                               "Indexer",
			Category:                           "Tooling & Infrastructure",
			Summary:                            "an indexer",
			Description:                        "cc @carol.near",
			RequestedSponsorshipUSDAmount:      "1000",
			RequestedSponsorshipPaidInCurrency: records.CurrencyUSDC,
			ReceiverAccount:                    alice,
			RequestedSponsor:                   "sponsor.near",
		},
		Timeline: timeline.NewVersionedTimelineStatus(status),
	}
}

func newRFPBody() records.RFPBody {
	return records.RFPBody{
		Name:        "Explorer",
		Summary:     "build an explorer",
		Description: "ping @dave.near",
	}
}

func requireCode(t *testing.T, err error, want v1.ErrCode) {
	t.Helper()

	if err == nil {
		t.Fatalf("got nil error, want %v", v1.ErrCodes[want])
	}
	if got := v1.ErrCodeOf(err); got != want {
		t.Fatalf("got %v (%v), want %v", v1.ErrCodes[got], err,
			v1.ErrCodes[want])
	}
}

func requireFsck(t *testing.T, h *testHub) {
	t.Helper()

	if err := h.Fsck(); err != nil {
		t.Fatal(err)
	}
}

func TestAddProposal(t *testing.T) {
	h := newTestHub(t)
	draft := newProposalBody(timeline.Draft())

	var tests = []struct {
		name    string
		account string
		body    records.ProposalBody
		labels  []string
		want    v1.ErrCode
	}{
		{"draft", alice, draft, []string{"funding"}, v1.ErrCodeInvalid},
		{"empty review", alice,
			newProposalBody(timeline.Review(timeline.ReviewStatus{})),
			nil, v1.ErrCodeInvalid},
		{"review with progress", alice,
			newProposalBody(timeline.Review(timeline.ReviewStatus{
				SponsorRequestedReview: true,
			})),
			nil, v1.ErrCodeInvalidTransition},
		{"approved", moderator,
			newProposalBody(timeline.Approved(timeline.ReviewStatus{})),
			nil, v1.ErrCodeInvalidTransition},
		{"restricted label", alice, draft, []string{"wg-protocol"},
			v1.ErrCodePermissionDenied},
		{"restricted label with permission", wgMember, draft,
			[]string{"wg-protocol"}, v1.ErrCodeInvalid},
		{"invalid label", alice, draft, []string{" padded"},
			v1.ErrCodePayloadInvalid},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			_, err := h.as(v.account).AddProposal(v.body, v.labels)
			if v.want == v1.ErrCodeInvalid {
				if err != nil {
					t.Fatal(err)
				}
				return
			}
			requireCode(t, err, v.want)
		})
	}

	bad := newProposalBody(timeline.Draft())
	bad.Category = "Gardening"
	_, err := h.as(alice).AddProposal(bad, nil)
	requireCode(t, err, v1.ErrCodeCategoryInvalid)

	// Failed calls do not consume ids.
	ps, err := h.Proposals()
	if err != nil {
		t.Fatal(err)
	}
	if len(ps) != 3 {
		t.Fatalf("got %v proposals, want 3", len(ps))
	}
	for i, p := range ps {
		if p.ID != records.ProposalID(i) {
			t.Errorf("proposal %v has id %v", i, p.ID)
		}
	}

	ids, err := h.ProposalIDsByAuthor(alice)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]records.ProposalID{0, 1}, ids); diff != "" {
		t.Errorf("author index (-want +got):\n%s", diff)
	}
	ids, err = h.ProposalIDsByLabel("wg-protocol")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]records.ProposalID{2}, ids); diff != "" {
		t.Errorf("label index (-want +got):\n%s", diff)
	}
	labels, err := h.ProposalLabels()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"funding", "wg-protocol"}, labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	requireFsck(t, h)
}

func TestProposalTimeline(t *testing.T) {
	h := newTestHub(t)
	id, err := h.as(alice).AddProposal(newProposalBody(timeline.Draft()), nil)
	if err != nil {
		t.Fatal(err)
	}

	requested := timeline.NewVersionedTimelineStatus(
		timeline.Review(timeline.ReviewStatus{SponsorRequestedReview: true}))

	// Neither a stranger nor the author may request a review with
	// progress.
	err = h.as(bob).EditProposalTimeline(id, requested)
	requireCode(t, err, v1.ErrCodePermissionDenied)
	err = h.as(alice).EditProposalTimeline(id, requested)
	requireCode(t, err, v1.ErrCodePermissionDenied)

	// The author may move the draft to an empty review. KYC
	// verification is not review progress.
	kyc := timeline.NewVersionedTimelineStatus(
		timeline.Review(timeline.ReviewStatus{KYCVerified: true}))
	if err := h.as(alice).EditProposalTimeline(id, kyc); err != nil {
		t.Fatal(err)
	}

	// The moderator may record review progress.
	if err := h.as(moderator).EditProposalTimeline(id, requested); err != nil {
		t.Fatal(err)
	}

	// Approval requires a supervisor.
	approved := timeline.NewVersionedTimelineStatus(
		timeline.Approved(timeline.ReviewStatus{SponsorRequestedReview: true}))
	err = h.as(moderator).EditProposalTimeline(id, approved)
	requireCode(t, err, v1.ErrCodeInvalidTransition)

	body := newProposalBody(approved.Latest())
	supervisor := "super.near"
	body.Supervisor = &supervisor
	if err := h.as(moderator).EditProposal(id, body, nil); err != nil {
		t.Fatal(err)
	}

	// Removing the supervisor of an approved proposal is rejected.
	body.Supervisor = nil
	err = h.as(moderator).EditProposal(id, body, nil)
	requireCode(t, err, v1.ErrCodePayloadInvalid)

	// The author can no longer cancel an approved proposal.
	body.Supervisor = &supervisor
	body.Timeline = timeline.NewVersionedTimelineStatus(
		timeline.Cancelled(timeline.ReviewStatus{}))
	err = h.as(alice).EditProposal(id, body, nil)
	requireCode(t, err, v1.ErrCodePermissionDenied)

	p, err := h.Proposal(id)
	if err != nil {
		t.Fatal(err)
	}
	if got := p.Body().Status().Status; got != timeline.StatusApproved {
		t.Errorf("got status %v, want %v", got, timeline.StatusApproved)
	}
	if len(p.SnapshotHistory) != 3 {
		t.Errorf("got %v history snapshots, want 3", len(p.SnapshotHistory))
	}
}

func TestProposalCancel(t *testing.T) {
	h := newTestHub(t)
	id, err := h.as(alice).AddProposal(newProposalBody(timeline.Draft()), nil)
	if err != nil {
		t.Fatal(err)
	}
	cancelled := timeline.NewVersionedTimelineStatus(
		timeline.Cancelled(timeline.ReviewStatus{}))
	if err := h.as(alice).EditProposalTimeline(id, cancelled); err != nil {
		t.Fatal(err)
	}

	// Cancelled is terminal for the author.
	draft := timeline.NewVersionedTimelineStatus(timeline.Draft())
	err = h.as(alice).EditProposalTimeline(id, draft)
	requireCode(t, err, v1.ErrCodePermissionDenied)
}

func TestEditProposalPermissions(t *testing.T) {
	h := newTestHub(t)
	body := newProposalBody(timeline.Draft())
	id, err := h.as(wgMember).AddProposal(body, []string{"wg-protocol"})
	if err != nil {
		t.Fatal(err)
	}

	// A stranger may not edit.
	body.Name = "Renamed"
	err = h.as(bob).EditProposal(id, body, []string{"wg-protocol"})
	requireCode(t, err, v1.ErrCodePermissionDenied)

	// Other members of the working group may edit through the edit post
	// action and may not change the timeline.
	const peer = "peer.near"
	err = h.as(self).AddMember(access.Account(peer), access.MemberMetadata{
		Parents: access.NewMemberSet(access.Team("wg")),
	})
	if err != nil {
		t.Fatal(err)
	}
	ok, err := h.IsAllowedToEditProposal(id, peer)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("working group member may not edit")
	}
	if err := h.as(peer).EditProposal(id, body,
		[]string{"wg-protocol"}); err != nil {
		t.Fatal(err)
	}
	err = h.as(peer).EditProposalTimeline(id,
		timeline.NewVersionedTimelineStatus(
			timeline.Review(timeline.ReviewStatus{})))
	requireCode(t, err, v1.ErrCodePermissionDenied)

	// The author may not drop a restricted label without permission once
	// the permission is lost.
	if err := h.as(self).RemoveMember(access.Team("wg")); err != nil {
		t.Fatal(err)
	}
	err = h.as(wgMember).EditProposal(id, body, nil)
	requireCode(t, err, v1.ErrCodePermissionDenied)

	// The moderator may.
	if err := h.as(moderator).EditProposal(id, body, nil); err != nil {
		t.Fatal(err)
	}
	ids, err := h.ProposalIDsByLabel("wg-protocol")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("label index not updated: %v", ids)
	}
	requireFsck(t, h)
}

func TestRFPLabelPropagation(t *testing.T) {
	h := newTestHub(t)
	rfpID, err := h.as(moderator).AddRFP(newRFPBody(), []string{"a"})
	if err != nil {
		t.Fatal(err)
	}

	// The labels of the RFP override the provided labels.
	body := newProposalBody(timeline.Draft())
	body.LinkedRFP = &rfpID
	pid, err := h.as(alice).AddProposal(body, []string{"ignored"})
	if err != nil {
		t.Fatal(err)
	}
	p, err := h.Proposal(pid)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"a"}, p.Snapshot.Labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	r, err := h.RFP(rfpID)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Snapshot.LinkedProposals.Has(pid) {
		t.Fatal("rfp does not list the proposal")
	}

	if err := h.as(moderator).EditRFP(rfpID, newRFPBody(),
		[]string{"b"}); err != nil {
		t.Fatal(err)
	}
	p, err = h.Proposal(pid)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"b"}, p.Snapshot.Labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}
	for label, want := range map[string][]records.ProposalID{
		"a": {},
		"b": {pid},
	} {
		ids, err := h.ProposalIDsByLabel(label)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(want, ids); diff != "" {
			t.Errorf("label %v (-want +got):\n%s", label, diff)
		}
	}
	rids, err := h.RFPIDsByLabel("b")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]records.RFPID{rfpID}, rids); diff != "" {
		t.Errorf("rfp index (-want +got):\n%s", diff)
	}
	requireFsck(t, h)
}

func TestRFPProposalSelected(t *testing.T) {
	h := newTestHub(t)
	rfpID, err := h.as(moderator).AddRFP(newRFPBody(), nil)
	if err != nil {
		t.Fatal(err)
	}
	selected := timeline.RFPTimelineStatus{
		Status: timeline.RFPStatusProposalSelected,
	}

	// No linked proposals.
	err = h.as(moderator).EditRFPTimeline(rfpID, selected)
	requireCode(t, err, v1.ErrCodeInvalidTransition)

	// A linked draft is not enough.
	body := newProposalBody(timeline.Draft())
	body.LinkedRFP = &rfpID
	pid, err := h.as(alice).AddProposal(body, nil)
	if err != nil {
		t.Fatal(err)
	}
	err = h.as(moderator).EditRFPTimeline(rfpID, selected)
	requireCode(t, err, v1.ErrCodeInvalidTransition)

	supervisor := "super.near"
	body.Supervisor = &supervisor
	body.Timeline = timeline.NewVersionedTimelineStatus(
		timeline.Approved(timeline.ReviewStatus{}))
	if err := h.as(moderator).EditProposal(pid, body, nil); err != nil {
		t.Fatal(err)
	}
	if err := h.as(moderator).EditRFPTimeline(rfpID, selected); err != nil {
		t.Fatal(err)
	}

	// Only privileged accounts write RFPs.
	err = h.as(alice).EditRFPTimeline(rfpID, timeline.RFPTimelineStatus{
		Status: timeline.RFPStatusCancelled,
	})
	requireCode(t, err, v1.ErrCodePermissionDenied)

	// Going back is not a transition.
	err = h.as(moderator).EditRFPTimeline(rfpID, timeline.AcceptingSubmissions())
	requireCode(t, err, v1.ErrCodeInvalidTransition)
}

func TestLinkRequiresAcceptingSubmissions(t *testing.T) {
	h := newTestHub(t)
	rfpID, err := h.as(moderator).AddRFP(newRFPBody(), nil)
	if err != nil {
		t.Fatal(err)
	}
	err = h.as(moderator).EditRFPTimeline(rfpID, timeline.RFPTimelineStatus{
		Status: timeline.RFPStatusEvaluation,
	})
	if err != nil {
		t.Fatal(err)
	}

	pid, err := h.as(alice).AddProposal(newProposalBody(timeline.Draft()), nil)
	if err != nil {
		t.Fatal(err)
	}
	err = h.as(alice).EditProposalLinkedRFP(pid, &rfpID)
	requireCode(t, err, v1.ErrCodeInvalidTransition)

	// Privileged accounts may correct links at any time.
	if err := h.as(moderator).EditProposalLinkedRFP(pid, &rfpID); err != nil {
		t.Fatal(err)
	}
	requireFsck(t, h)
}

func TestRelinkProposal(t *testing.T) {
	h := newTestHub(t)
	first, err := h.as(moderator).AddRFP(newRFPBody(), []string{"first"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.as(moderator).AddRFP(newRFPBody(), []string{"second"})
	if err != nil {
		t.Fatal(err)
	}
	body := newProposalBody(timeline.Draft())
	body.LinkedRFP = &first
	pid, err := h.as(alice).AddProposal(body, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := h.as(alice).EditProposalLinkedRFP(pid, &second); err != nil {
		t.Fatal(err)
	}
	r1, err := h.RFP(first)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := h.RFP(second)
	if err != nil {
		t.Fatal(err)
	}
	if r1.Snapshot.LinkedProposals.Has(pid) {
		t.Error("old rfp still lists the proposal")
	}
	if !r2.Snapshot.LinkedProposals.Has(pid) {
		t.Error("new rfp does not list the proposal")
	}
	p, err := h.Proposal(pid)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"second"}, p.Snapshot.Labels); diff != "" {
		t.Errorf("labels (-want +got):\n%s", diff)
	}

	// Unlinking keeps the inherited labels.
	if err := h.as(alice).EditProposalLinkedRFP(pid, nil); err != nil {
		t.Fatal(err)
	}
	r2, err = h.RFP(second)
	if err != nil {
		t.Fatal(err)
	}
	if len(r2.Snapshot.LinkedProposals) != 0 {
		t.Errorf("rfp still lists %v", r2.Snapshot.LinkedProposals)
	}
	requireFsck(t, h)

	_, err = h.as(alice).AddProposal(body, nil)
	if err != nil {
		t.Fatal(err)
	}
	missing := records.RFPID(9)
	body.LinkedRFP = &missing
	_, err = h.as(alice).AddProposal(body, nil)
	requireCode(t, err, v1.ErrCodeNotFound)
}

func TestEditRollback(t *testing.T) {
	h := newTestHub(t)
	rfpID, err := h.as(moderator).AddRFP(newRFPBody(), []string{"wg-rfp"})
	if err != nil {
		t.Fatal(err)
	}
	pid, err := h.as(alice).AddProposal(newProposalBody(timeline.Draft()), nil)
	if err != nil {
		t.Fatal(err)
	}

	// Linking would add the restricted labels of the RFP. The RFP link
	// staged before the label check must not be committed.
	err = h.as(alice).EditProposalLinkedRFP(pid, &rfpID)
	requireCode(t, err, v1.ErrCodePermissionDenied)

	r, err := h.RFP(rfpID)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Snapshot.LinkedProposals) != 0 || len(r.SnapshotHistory) != 0 {
		t.Fatalf("rfp was changed: %v", r.Snapshot.LinkedProposals)
	}
	p, err := h.Proposal(pid)
	if err != nil {
		t.Fatal(err)
	}
	if p.Body().LinkedRFP != nil || len(p.SnapshotHistory) != 0 {
		t.Fatal("proposal was changed")
	}
	requireFsck(t, h)
}

func TestCancelRFP(t *testing.T) {
	h := newTestHub(t)
	rfpID, err := h.as(moderator).AddRFP(newRFPBody(), []string{"rfp"})
	if err != nil {
		t.Fatal(err)
	}
	body := newProposalBody(timeline.Review(timeline.ReviewStatus{}))
	body.LinkedRFP = &rfpID
	var ids []records.ProposalID
	for i := 0; i < 3; i++ {
		id, err := h.as(alice).AddProposal(body, nil)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	// Every listed proposal must be linked.
	err = h.as(moderator).CancelRFP(rfpID, []records.ProposalID{7}, nil)
	requireCode(t, err, v1.ErrCodeInvariantViolation)
	err = h.as(moderator).CancelRFP(rfpID, ids[:1], ids[:1])
	requireCode(t, err, v1.ErrCodePayloadInvalid)

	err = h.as(moderator).CancelRFP(rfpID, ids[:1], ids[1:2])
	if err != nil {
		t.Fatal(err)
	}

	r, err := h.RFP(rfpID)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Body().Timeline.IsCancelled() {
		t.Errorf("rfp is %v", r.Body().Timeline)
	}
	want := records.NewProposalIDs(ids[0], ids[2])
	if diff := cmp.Diff(want, r.Snapshot.LinkedProposals); diff != "" {
		t.Errorf("linked (-want +got):\n%s", diff)
	}

	cancelled, err := h.Proposal(ids[0])
	if err != nil {
		t.Fatal(err)
	}
	if !cancelled.Body().Status().IsCancelled() {
		t.Errorf("proposal is %v", cancelled.Body().Status())
	}
	unlinked, err := h.Proposal(ids[1])
	if err != nil {
		t.Fatal(err)
	}
	if unlinked.Body().LinkedRFP != nil {
		t.Error("proposal is still linked")
	}
	requireFsck(t, h)
}

func TestGlobalLabels(t *testing.T) {
	h := newTestHub(t)
	err := h.as(moderator).SetGlobalLabels([]GlobalLabel{
		{Value: "near-ai", Title: "NEAR AI", Color: "#00ec97"},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = h.as(moderator).AddRFP(newRFPBody(), []string{"unknown"})
	requireCode(t, err, v1.ErrCodeLabelInvalid)
	_, err = h.as(moderator).AddRFP(newRFPBody(), []string{"near-ai"})
	if err != nil {
		t.Fatal(err)
	}
	err = h.as(alice).SetGlobalLabels(nil)
	requireCode(t, err, v1.ErrCodePermissionDenied)

	got, err := h.GlobalLabels()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "NEAR AI" {
		t.Errorf("got %v", got)
	}
}

func TestCategories(t *testing.T) {
	h := newTestHub(t)
	got, err := h.AllowedCategories()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultCategories, got); diff != "" {
		t.Errorf("defaults (-want +got):\n%s", diff)
	}

	if err := h.as(moderator).SetAllowedCategories([]string{"Research"}); err != nil {
		t.Fatal(err)
	}
	body := newProposalBody(timeline.Draft())
	_, err = h.as(alice).AddProposal(body, nil)
	requireCode(t, err, v1.ErrCodeCategoryInvalid)
	body.Category = "Research"
	if _, err := h.as(alice).AddProposal(body, nil); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotAt(t *testing.T) {
	h := newTestHub(t)
	h.as(alice)
	created := h.env.Timestamp
	body := newProposalBody(timeline.Draft())
	id, err := h.AddProposal(body, nil)
	if err != nil {
		t.Fatal(err)
	}
	body.Name = "Renamed"
	if err := h.as(alice).EditProposal(id, body, nil); err != nil {
		t.Fatal(err)
	}

	s, err := h.ProposalSnapshotAt(id, created+5)
	if err != nil {
		t.Fatal(err)
	}
	if s.Body.Latest().Name != "Indexer" {
		t.Errorf("got name %v", s.Body.Latest().Name)
	}
	_, err = h.ProposalSnapshotAt(id, created-1)
	requireCode(t, err, v1.ErrCodeNotFound)

	h.as(moderator)
	height := h.env.Height
	rfpID, err := h.AddRFP(newRFPBody(), nil)
	if err != nil {
		t.Fatal(err)
	}
	rb := newRFPBody()
	rb.Name = "Renamed"
	if err := h.as(moderator).EditRFP(rfpID, rb, nil); err != nil {
		t.Fatal(err)
	}
	rs, err := h.RFPSnapshotAt(rfpID, height)
	if err != nil {
		t.Fatal(err)
	}
	if rs.Body.Latest().Name != "Explorer" {
		t.Errorf("got name %v", rs.Body.Latest().Name)
	}
}

func TestNotifications(t *testing.T) {
	h := newTestHub(t)
	body := newProposalBody(timeline.Draft())
	supervisor := "super.near"
	body.Supervisor = &supervisor
	if _, err := h.as(alice).AddProposal(body, nil); err != nil {
		t.Fatal(err)
	}
	if len(h.notifier.got) != 1 {
		t.Fatalf("got %v notifications", len(h.notifier.got))
	}
	n := h.notifier.got[0]
	want := []string{"carol.near", "sponsor.near", "super.near"}
	if diff := cmp.Diff(want, n.Subscribers); diff != "" {
		t.Errorf("subscribers (-want +got):\n%s", diff)
	}
	if n.Type != notify.TypeProposalAdded || n.Actor != alice {
		t.Errorf("got %v by %v", n.Type, n.Actor)
	}

	// Failed calls do not notify and notifier failures do not fail the
	// call.
	h.notifier.got = nil
	_, err := h.as(bob).AddProposal(body, []string{"wg-x"})
	requireCode(t, err, v1.ErrCodePermissionDenied)
	if len(h.notifier.got) != 0 {
		t.Fatal("failed call notified")
	}
	h.notifier.err = errors.New("mail server down")
	if _, err := h.as(bob).AddProposal(body, nil); err != nil {
		t.Fatal(err)
	}
	if len(h.notifier.got) != 1 {
		t.Fatal("notifier not invoked")
	}
}

func TestFsckDetectsCorruption(t *testing.T) {
	h := newTestHub(t)
	if _, err := h.as(alice).AddProposal(newProposalBody(timeline.Draft()),
		[]string{"funding"}); err != nil {
		t.Fatal(err)
	}
	requireFsck(t, h)

	b, err := store.Encode(descriptorIndex, []uint64{0, 5})
	if err != nil {
		t.Fatal(err)
	}
	err = h.kv.Put(map[string][]byte{keyLabelProposals("funding"): b}, false)
	if err != nil {
		t.Fatal(err)
	}

	err = h.Fsck()
	var fe FsckError
	if !errors.As(err, &fe) {
		t.Fatalf("got %v, want FsckError", err)
	}
	if len(fe.Problems) != 1 {
		t.Errorf("got problems %v", fe.Problems)
	}
}

func TestSchemaMismatch(t *testing.T) {
	h := newTestHub(t)
	b, err := store.Encode("proposal-v9", struct{}{})
	if err != nil {
		t.Fatal(err)
	}
	err = h.kv.Put(map[string][]byte{keyProposal(0): b}, false)
	if err != nil {
		t.Fatal(err)
	}
	_, err = h.Proposal(0)
	requireCode(t, err, v1.ErrCodeSchemaMismatch)
}

func TestRestrictedLabelsCheckedIndividually(t *testing.T) {
	h := newTestHub(t)
	err := h.as(self).SetRestrictedRules(access.RulesList{
		access.ExactMatch("funding"): access.RuleMetadata{
			Description: "funding requests",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	draft := newProposalBody(timeline.Draft())

	// A grant on wg- labels does not cover funding.
	_, err = h.as(wgMember).AddProposal(draft, []string{"funding", "wg-x"})
	requireCode(t, err, v1.ErrCodePermissionDenied)

	id, err := h.as(wgMember).AddProposal(draft, []string{"wg-x"})
	if err != nil {
		t.Fatal(err)
	}
	err = h.as(wgMember).EditProposal(id, draft, []string{"funding", "wg-x"})
	requireCode(t, err, v1.ErrCodePermissionDenied)

	ids, err := h.ProposalIDsByLabel("funding")
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("funding index got %v, want empty", ids)
	}

	ok, err := h.IsAllowedToUseLabels(wgMember, []string{"funding", "wg-x"})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("mixed restricted labels allowed")
	}

	// The moderator may use both.
	if err := h.as(moderator).EditProposal(id, draft,
		[]string{"funding", "wg-x"}); err != nil {
		t.Fatal(err)
	}
	requireFsck(t, h)
}
