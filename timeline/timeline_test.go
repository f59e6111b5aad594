// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package timeline

import (
	"encoding/json"
	"errors"
	"testing"

	v1 "github.com/decred/govhub/api/v1"
	"github.com/go-test/deep"
)

func TestTimelineStatusJSON(t *testing.T) {
	var tests = []struct {
		name string
		ts   TimelineStatus
		want string
	}{
		{"draft", Draft(), `{"status":"DRAFT"}`},
		{"review", Review(ReviewStatus{SponsorRequestedReview: true}),
			`{"status":"REVIEW","sponsor_requested_review":true,` +
				`"reviewer_completed_attestation":false,"kyc_verified":false}`},
		{"funded", Funded(FundedStatus{
			PaymentProcessingStatus: PaymentProcessingStatus{
				ReviewStatus:        ReviewStatus{KYCVerified: true},
				TestTransactionSent: true,
			},
			TrusteesReleasedPayment: true,
			Payouts:                 []string{"tx1"},
		}),
			`{"status":"FUNDED","sponsor_requested_review":false,` +
				`"reviewer_completed_attestation":false,"kyc_verified":true,` +
				`"test_transaction_sent":true,` +
				`"request_for_trustees_created":false,` +
				`"trustees_released_payment":true,"payouts":["tx1"]}`},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			b, err := json.Marshal(v.ts)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != v.want {
				t.Fatalf("got %s, want %s", b, v.want)
			}
			var got TimelineStatus
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatal(err)
			}
			if diff := deep.Equal(got, v.ts); diff != nil {
				t.Error(diff)
			}
			if err := got.Validate(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestTimelineStatusPredicates(t *testing.T) {
	empty := ReviewStatus{}
	var tests = []struct {
		name           string
		ts             TimelineStatus
		emptyReview    bool
		canBeCancelled bool
		wasApproved    bool
		supervisor     bool
	}{
		{"draft", Draft(), false, true, false, false},
		{"empty review", Review(empty), true, true, false, false},
		{"review", Review(ReviewStatus{ReviewerCompletedAttestation: true}),
			false, true, false, false},
		{"kyc review", Review(ReviewStatus{KYCVerified: true}),
			true, true, false, false},
		{"requested review", Review(ReviewStatus{SponsorRequestedReview: true}),
			false, true, false, false},
		{"approved", Approved(empty), false, false, true, true},
		{"rejected", Rejected(empty), false, false, false, true},
		{"approved conditionally", ApprovedConditionally(empty),
			false, false, true, true},
		{"payment processing", PaymentProcessing(PaymentProcessingStatus{}),
			false, false, true, true},
		{"funded", Funded(FundedStatus{}), false, false, true, true},
		{"cancelled", Cancelled(empty), false, false, false, false},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			if got := v.ts.IsEmptyReview(); got != v.emptyReview {
				t.Errorf("IsEmptyReview got %v", got)
			}
			if got := v.ts.CanBeCancelled(); got != v.canBeCancelled {
				t.Errorf("CanBeCancelled got %v", got)
			}
			if got := v.ts.WasApproved(); got != v.wasApproved {
				t.Errorf("WasApproved got %v", got)
			}
			if got := v.ts.RequiresSupervisor(); got != v.supervisor {
				t.Errorf("RequiresSupervisor got %v", got)
			}
		})
	}
}

func TestTimelineStatusValidate(t *testing.T) {
	bad := []TimelineStatus{
		{Status: "UNKNOWN"},
		{Status: StatusReview},
		{Status: StatusDraft, Review: &ReviewStatus{}},
		{Status: StatusFunded, PaymentProcessing: &PaymentProcessingStatus{}},
	}
	for _, ts := range bad {
		if err := ts.Validate(); v1.ErrCodeOf(err) != v1.ErrCodePayloadInvalid {
			t.Errorf("%+v: got %v, want payload invalid", ts, err)
		}
	}
}

func TestVersionedTimelineUpgrade(t *testing.T) {
	var tests = []struct {
		name string
		in   string
		want TimelineStatus
	}{
		{"v1 draft", `{"timeline_version":"V1","status":"DRAFT"}`, Draft()},
		{"v1 review defaults kyc",
			`{"timeline_version":"V1","status":"REVIEW",` +
				`"sponsor_requested_review":true,` +
				`"reviewer_completed_attestation":true}`,
			Review(ReviewStatus{
				SponsorRequestedReview:       true,
				ReviewerCompletedAttestation: true,
			})},
		{"v1 payment processing keeps kyc",
			`{"timeline_version":"V1","status":"PAYMENT_PROCESSING",` +
				`"sponsor_requested_review":true,` +
				`"reviewer_completed_attestation":false,` +
				`"kyc_verified":true,"test_transaction_sent":true,` +
				`"request_for_trustees_created":false}`,
			PaymentProcessing(PaymentProcessingStatus{
				ReviewStatus: ReviewStatus{
					SponsorRequestedReview: true,
					KYCVerified:            true,
				},
				TestTransactionSent: true,
			})},
		{"v1 funded",
			`{"timeline_version":"V1","status":"FUNDED",` +
				`"kyc_verified":true,"trustees_released_payment":true,` +
				`"payouts":["a","b"]}`,
			Funded(FundedStatus{
				PaymentProcessingStatus: PaymentProcessingStatus{
					ReviewStatus: ReviewStatus{KYCVerified: true},
				},
				TrusteesReleasedPayment: true,
				Payouts:                 []string{"a", "b"},
			})},
		{"v2 cancelled",
			`{"timeline_version":"V2","status":"CANCELLED",` +
				`"kyc_verified":true}`,
			Cancelled(ReviewStatus{KYCVerified: true})},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			var vts VersionedTimelineStatus
			if err := json.Unmarshal([]byte(v.in), &vts); err != nil {
				t.Fatal(err)
			}
			got := vts.Latest()
			if diff := deep.Equal(got, v.want); diff != nil {
				t.Fatal(diff)
			}

			// Upgrading the latest form again is a no-op.
			again := NewVersionedTimelineStatus(got).Latest()
			if diff := deep.Equal(again, got); diff != nil {
				t.Error(diff)
			}

			// Writing always uses the tag of the wrapped version.
			b, err := json.Marshal(vts)
			if err != nil {
				t.Fatal(err)
			}
			tagged := `{"timeline_version":"` + string(vts.Version) + `"`
			if string(b[:len(tagged)]) != tagged {
				t.Errorf("got %s", b)
			}
		})
	}
}

func TestVersionedTimelineUnknownVersion(t *testing.T) {
	var vts VersionedTimelineStatus
	err := json.Unmarshal([]byte(`{"timeline_version":"V7","status":"DRAFT"}`),
		&vts)
	if v1.ErrCodeOf(err) != v1.ErrCodeSchemaMismatch {
		t.Errorf("got %v, want schema mismatch", err)
	}
}

func TestCheckProposalTransition(t *testing.T) {
	var (
		author    = Editor{Author: true}
		moderator = Editor{Privileged: true}
		other     = Editor{}

		sponsored = Review(ReviewStatus{SponsorRequestedReview: true})
		empty     = Review(ReviewStatus{})
		approved  = Approved(ReviewStatus{ReviewerCompletedAttestation: true})
	)
	var tests = []struct {
		name       string
		from, to   TimelineStatus
		editor     Editor
		supervisor bool
		want       v1.ErrCode
		transition bool
	}{
		{"unchanged", sponsored, sponsored, other, false,
			v1.ErrCodeInvalid, false},
		{"other to review", Draft(), sponsored, other, false,
			v1.ErrCodePermissionDenied, false},
		{"author to sponsored review", Draft(), sponsored, author, false,
			v1.ErrCodePermissionDenied, false},
		{"author to empty review", Draft(), empty, author, false,
			v1.ErrCodeInvalid, false},
		{"author to kyc verified review", Draft(),
			Review(ReviewStatus{KYCVerified: true}), author, false,
			v1.ErrCodeInvalid, false},
		{"author cancels review", empty, Cancelled(ReviewStatus{}),
			author, false, v1.ErrCodeInvalid, false},
		{"author reopens cancelled", Cancelled(ReviewStatus{}), Draft(),
			author, false, v1.ErrCodePermissionDenied, false},
		{"other cancels", Draft(), Cancelled(ReviewStatus{}), other, false,
			v1.ErrCodePermissionDenied, false},
		{"moderator to sponsored review", Draft(), sponsored, moderator,
			false, v1.ErrCodeInvalid, false},
		{"moderator approves without supervisor", sponsored, approved,
			moderator, false, v1.ErrCodeInvalid, true},
		{"moderator approves", sponsored, approved, moderator, true,
			v1.ErrCodeInvalid, false},
		{"invalid target", Draft(), TimelineStatus{Status: StatusReview},
			moderator, true, v1.ErrCodePayloadInvalid, false},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			err := CheckProposalTransition(v.from, v.to, v.editor,
				v.supervisor)
			var te TransitionError
			if got := errors.As(err, &te); got != v.transition {
				t.Fatalf("got %v, want transition error %v", err,
					v.transition)
			}
			if v.transition {
				return
			}
			if got := v1.ErrCodeOf(err); got != v.want {
				t.Errorf("got %v, want %v", err, v1.ErrCodes[v.want])
			}
			if v.want == v1.ErrCodeInvalid && err != nil {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestCheckRFPTransition(t *testing.T) {
	var (
		accepting = AcceptingSubmissions()
		eval      = RFPTimelineStatus{Status: RFPStatusEvaluation}
		selected  = RFPTimelineStatus{Status: RFPStatusProposalSelected}
		cancelled = RFPTimelineStatus{Status: RFPStatusCancelled}
	)
	var tests = []struct {
		name     string
		from, to RFPTimelineStatus
		approved bool
		wantErr  bool
	}{
		{"same", eval, eval, false, false},
		{"accepting to evaluation", accepting, eval, false, false},
		{"select without approved", eval, selected, false, true},
		{"select with approved", eval, selected, true, false},
		{"evaluation back to accepting", eval, accepting, false, true},
		{"cancel", selected, cancelled, false, false},
		{"cancelled is terminal", cancelled, accepting, false, true},
	}
	for _, v := range tests {
		t.Run(v.name, func(t *testing.T) {
			err := CheckRFPTransition(v.from, v.to, v.approved)
			if (err != nil) != v.wantErr {
				t.Fatalf("got %v, want err %v", err, v.wantErr)
			}
			if err == nil {
				return
			}
			var te TransitionError
			if !errors.As(err, &te) {
				t.Errorf("got %T, want TransitionError", err)
			}
		})
	}
}
