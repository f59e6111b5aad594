// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package timeline contains the lifecycle statuses of proposals and RFPs and
// the rules that govern changes between them.
package timeline

import (
	"encoding/json"
	"fmt"

	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/util"
)

// StatusT represents a proposal timeline status.
type StatusT string

const (
	StatusDraft                 StatusT = "DRAFT"
	StatusReview                StatusT = "REVIEW"
	StatusApproved              StatusT = "APPROVED"
	StatusRejected              StatusT = "REJECTED"
	StatusApprovedConditionally StatusT = "APPROVED_CONDITIONALLY"
	StatusPaymentProcessing     StatusT = "PAYMENT_PROCESSING"
	StatusFunded                StatusT = "FUNDED"
	StatusCancelled             StatusT = "CANCELLED"
)

// Statuses contains the human readable proposal timeline statuses.
var Statuses = map[StatusT]string{
	StatusDraft:                 "draft",
	StatusReview:                "review",
	StatusApproved:              "approved",
	StatusRejected:              "rejected",
	StatusApprovedConditionally: "approved conditionally",
	StatusPaymentProcessing:     "payment processing",
	StatusFunded:                "funded",
	StatusCancelled:             "cancelled",
}

// hasReview returns whether a status carries a ReviewStatus.
func hasReview(s StatusT) bool {
	switch s {
	case StatusReview, StatusApproved, StatusRejected,
		StatusApprovedConditionally, StatusCancelled:
		return true
	}
	return false
}

// ReviewStatus is the review progress of a proposal.
type ReviewStatus struct {
	SponsorRequestedReview       bool `json:"sponsor_requested_review"`
	ReviewerCompletedAttestation bool `json:"reviewer_completed_attestation"`
	KYCVerified                  bool `json:"kyc_verified"`
}

// PaymentProcessingStatus is the payment progress of an approved proposal.
type PaymentProcessingStatus struct {
	ReviewStatus
	TestTransactionSent       bool `json:"test_transaction_sent"`
	RequestForTrusteesCreated bool `json:"request_for_trustees_created"`
}

// FundedStatus is the final payment state of a proposal.
type FundedStatus struct {
	PaymentProcessingStatus
	TrusteesReleasedPayment bool     `json:"trustees_released_payment"`
	Payouts                 []string `json:"payouts"`
}

// TimelineStatus is the lifecycle status of a proposal. Exactly one of the
// detail fields is set depending on the status: Review for the review,
// approved, rejected, approved conditionally and cancelled statuses,
// PaymentProcessing for the payment processing status and Funded for the
// funded status. Drafts carry no details.
//
// The JSON encoding is a single object tagged by the "status" field with the
// detail fields flattened into it.
type TimelineStatus struct {
	Status            StatusT
	Review            *ReviewStatus
	PaymentProcessing *PaymentProcessingStatus
	Funded            *FundedStatus
}

// Draft returns a draft timeline status.
func Draft() TimelineStatus {
	return TimelineStatus{Status: StatusDraft}
}

// Review returns a review timeline status.
func Review(r ReviewStatus) TimelineStatus {
	return TimelineStatus{Status: StatusReview, Review: &r}
}

// Approved returns an approved timeline status.
func Approved(r ReviewStatus) TimelineStatus {
	return TimelineStatus{Status: StatusApproved, Review: &r}
}

// Rejected returns a rejected timeline status.
func Rejected(r ReviewStatus) TimelineStatus {
	return TimelineStatus{Status: StatusRejected, Review: &r}
}

// ApprovedConditionally returns an approved conditionally timeline status.
func ApprovedConditionally(r ReviewStatus) TimelineStatus {
	return TimelineStatus{Status: StatusApprovedConditionally, Review: &r}
}

// Cancelled returns a cancelled timeline status.
func Cancelled(r ReviewStatus) TimelineStatus {
	return TimelineStatus{Status: StatusCancelled, Review: &r}
}

// PaymentProcessing returns a payment processing timeline status.
func PaymentProcessing(p PaymentProcessingStatus) TimelineStatus {
	return TimelineStatus{Status: StatusPaymentProcessing, PaymentProcessing: &p}
}

// Funded returns a funded timeline status.
func Funded(f FundedStatus) TimelineStatus {
	return TimelineStatus{Status: StatusFunded, Funded: &f}
}

// Validate verifies that the status is known and that it carries the details
// that belong to it.
func (t TimelineStatus) Validate() error {
	if _, ok := Statuses[t.Status]; !ok {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"unknown timeline status %q", t.Status)
	}
	var (
		wantReview  = hasReview(t.Status)
		wantPayment = t.Status == StatusPaymentProcessing
		wantFunded  = t.Status == StatusFunded
	)
	if (t.Review != nil) != wantReview ||
		(t.PaymentProcessing != nil) != wantPayment ||
		(t.Funded != nil) != wantFunded {
		return v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"timeline status %v details mismatch", t.Status)
	}
	return nil
}

// Equal returns whether both statuses are identical.
func (t TimelineStatus) Equal(o TimelineStatus) bool {
	a, err := json.Marshal(t)
	if err != nil {
		return false
	}
	b, err := json.Marshal(o)
	if err != nil {
		return false
	}
	return string(a) == string(b)
}

// ReviewState returns the review progress that the status carries. Drafts
// have no review progress.
func (t TimelineStatus) ReviewState() ReviewStatus {
	switch {
	case t.Review != nil:
		return *t.Review
	case t.PaymentProcessing != nil:
		return t.PaymentProcessing.ReviewStatus
	case t.Funded != nil:
		return t.Funded.ReviewStatus
	}
	return ReviewStatus{}
}

// IsDraft returns whether the status is draft.
func (t TimelineStatus) IsDraft() bool {
	return t.Status == StatusDraft
}

// IsReview returns whether the status is review.
func (t TimelineStatus) IsReview() bool {
	return t.Status == StatusReview
}

// IsEmptyReview returns whether the status is a review on which no review
// progress has been recorded. KYC verification is not review progress.
func (t TimelineStatus) IsEmptyReview() bool {
	if t.Status != StatusReview || t.Review == nil {
		return false
	}
	return !t.Review.SponsorRequestedReview &&
		!t.Review.ReviewerCompletedAttestation
}

// IsCancelled returns whether the status is cancelled.
func (t TimelineStatus) IsCancelled() bool {
	return t.Status == StatusCancelled
}

// CanBeCancelled returns whether a cancellation may be requested from the
// status.
func (t TimelineStatus) CanBeCancelled() bool {
	return t.Status == StatusDraft || t.Status == StatusReview
}

// WasApproved returns whether the proposal has been approved at some point.
func (t TimelineStatus) WasApproved() bool {
	switch t.Status {
	case StatusApproved, StatusApprovedConditionally,
		StatusPaymentProcessing, StatusFunded:
		return true
	}
	return false
}

// RequiresSupervisor returns whether a proposal in this status must have a
// supervisor.
func (t TimelineStatus) RequiresSupervisor() bool {
	switch t.Status {
	case StatusDraft, StatusReview, StatusCancelled:
		return false
	}
	return true
}

// MarshalJSON satisfies the json.Marshaler interface.
func (t TimelineStatus) MarshalJSON() ([]byte, error) {
	var details interface{}
	switch {
	case t.Funded != nil:
		details = t.Funded
	case t.PaymentProcessing != nil:
		details = t.PaymentProcessing
	case t.Review != nil:
		details = t.Review
	}
	return util.MarshalTagged("status", string(t.Status), details)
}

// UnmarshalJSON satisfies the json.Unmarshaler interface.
func (t *TimelineStatus) UnmarshalJSON(b []byte) error {
	status, err := util.PeekTag(b, "status")
	if err != nil {
		return err
	}
	r := TimelineStatus{Status: StatusT(status)}
	switch {
	case r.Status == StatusDraft:
	case hasReview(r.Status):
		r.Review = &ReviewStatus{}
		err = json.Unmarshal(b, r.Review)
	case r.Status == StatusPaymentProcessing:
		r.PaymentProcessing = &PaymentProcessingStatus{}
		err = json.Unmarshal(b, r.PaymentProcessing)
	case r.Status == StatusFunded:
		r.Funded = &FundedStatus{}
		err = json.Unmarshal(b, r.Funded)
	default:
		return v1.NewUserErr(v1.ErrCodePayloadInvalid,
			"unknown timeline status %q", status)
	}
	if err != nil {
		return err
	}
	*t = r
	return nil
}

// String satisfies the fmt.Stringer interface.
func (t TimelineStatus) String() string {
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Sprintf("%v", t.Status)
	}
	return string(b)
}
