// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package timeline

import (
	"encoding/json"

	v1 "github.com/decred/govhub/api/v1"
	"github.com/decred/govhub/util"
)

// ReviewStatusV1 is the first version of the review progress. The KYC flag
// was kept on the payment processing status.
type ReviewStatusV1 struct {
	SponsorRequestedReview       bool `json:"sponsor_requested_review"`
	ReviewerCompletedAttestation bool `json:"reviewer_completed_attestation"`
}

// PaymentProcessingStatusV1 is the first version of the payment progress.
type PaymentProcessingStatusV1 struct {
	ReviewStatusV1
	KYCVerified               bool `json:"kyc_verified"`
	TestTransactionSent       bool `json:"test_transaction_sent"`
	RequestForTrusteesCreated bool `json:"request_for_trustees_created"`
}

// FundedStatusV1 is the first version of the funded state.
type FundedStatusV1 struct {
	PaymentProcessingStatusV1
	TrusteesReleasedPayment bool     `json:"trustees_released_payment"`
	Payouts                 []string `json:"payouts"`
}

// TimelineStatusV1 is the first version of the proposal timeline status. It
// uses the same statuses and the same "status" tagged encoding as
// TimelineStatus.
type TimelineStatusV1 struct {
	Status            StatusT
	Review            *ReviewStatusV1
	PaymentProcessing *PaymentProcessingStatusV1
	Funded            *FundedStatusV1
}

// MarshalJSON satisfies the json.Marshaler interface.
func (t TimelineStatusV1) MarshalJSON() ([]byte, error) {
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
func (t *TimelineStatusV1) UnmarshalJSON(b []byte) error {
	status, err := util.PeekTag(b, "status")
	if err != nil {
		return err
	}
	r := TimelineStatusV1{Status: StatusT(status)}
	switch {
	case r.Status == StatusDraft:
	case hasReview(r.Status):
		r.Review = &ReviewStatusV1{}
		err = json.Unmarshal(b, r.Review)
	case r.Status == StatusPaymentProcessing:
		r.PaymentProcessing = &PaymentProcessingStatusV1{}
		err = json.Unmarshal(b, r.PaymentProcessing)
	case r.Status == StatusFunded:
		r.Funded = &FundedStatusV1{}
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

func (r ReviewStatusV1) upgrade(kyc bool) ReviewStatus {
	return ReviewStatus{
		SponsorRequestedReview:       r.SponsorRequestedReview,
		ReviewerCompletedAttestation: r.ReviewerCompletedAttestation,
		KYCVerified:                  kyc,
	}
}

func (p PaymentProcessingStatusV1) upgrade() PaymentProcessingStatus {
	return PaymentProcessingStatus{
		ReviewStatus:              p.ReviewStatusV1.upgrade(p.KYCVerified),
		TestTransactionSent:       p.TestTransactionSent,
		RequestForTrusteesCreated: p.RequestForTrusteesCreated,
	}
}

// Upgrade converts the status to the latest version. The KYC flag of review
// statuses defaults to false; payment statuses carry their own flag over.
func (t TimelineStatusV1) Upgrade() TimelineStatus {
	r := TimelineStatus{Status: t.Status}
	switch {
	case t.Review != nil:
		rs := t.Review.upgrade(false)
		r.Review = &rs
	case t.PaymentProcessing != nil:
		p := t.PaymentProcessing.upgrade()
		r.PaymentProcessing = &p
	case t.Funded != nil:
		var payouts []string
		if t.Funded.Payouts != nil {
			payouts = append([]string{}, t.Funded.Payouts...)
		}
		r.Funded = &FundedStatus{
			PaymentProcessingStatus: t.Funded.PaymentProcessingStatusV1.upgrade(),
			TrusteesReleasedPayment: t.Funded.TrusteesReleasedPayment,
			Payouts:                 payouts,
		}
	}
	return r
}

// TimelineVersion is the version tag of a versioned timeline status.
type TimelineVersion string

const (
	TimelineV1 TimelineVersion = "V1"
	TimelineV2 TimelineVersion = "V2"

	timelineVersionTag = "timeline_version"
)

// VersionedTimelineStatus wraps a proposal timeline status of any known
// version. Only the field matching Version is set. The JSON encoding is the
// encoding of the wrapped status with a "timeline_version" tag prepended.
type VersionedTimelineStatus struct {
	Version TimelineVersion
	V1      *TimelineStatusV1
	V2      *TimelineStatus
}

// NewVersionedTimelineStatus wraps the provided status as the latest
// version.
func NewVersionedTimelineStatus(t TimelineStatus) VersionedTimelineStatus {
	return VersionedTimelineStatus{Version: TimelineV2, V2: &t}
}

// VersionedTimelineStatusV1 wraps a first version status.
func VersionedTimelineStatusV1(t TimelineStatusV1) VersionedTimelineStatus {
	return VersionedTimelineStatus{Version: TimelineV1, V1: &t}
}

// Latest returns the wrapped status converted to the latest version.
func (v VersionedTimelineStatus) Latest() TimelineStatus {
	switch {
	case v.V2 != nil:
		return *v.V2
	case v.V1 != nil:
		return v.V1.Upgrade()
	}
	return Draft()
}

// MarshalJSON satisfies the json.Marshaler interface.
func (v VersionedTimelineStatus) MarshalJSON() ([]byte, error) {
	var inner interface{}
	switch v.Version {
	case TimelineV1:
		inner = v.V1
	case TimelineV2:
		inner = v.V2
	default:
		return nil, v1.NewUserErr(v1.ErrCodeSchemaMismatch,
			"timeline version %q", v.Version)
	}
	return util.MarshalTagged(timelineVersionTag, string(v.Version), inner)
}

// UnmarshalJSON satisfies the json.Unmarshaler interface. An unknown version
// tag is a schema mismatch.
func (v *VersionedTimelineStatus) UnmarshalJSON(b []byte) error {
	version, err := util.PeekTag(b, timelineVersionTag)
	if err != nil {
		return err
	}
	switch TimelineVersion(version) {
	case TimelineV1:
		var t TimelineStatusV1
		if err := json.Unmarshal(b, &t); err != nil {
			return err
		}
		*v = VersionedTimelineStatusV1(t)
	case TimelineV2:
		var t TimelineStatus
		if err := json.Unmarshal(b, &t); err != nil {
			return err
		}
		*v = NewVersionedTimelineStatus(t)
	default:
		return v1.NewUserErr(v1.ErrCodeSchemaMismatch,
			"timeline version %q", version)
	}
	return nil
}
