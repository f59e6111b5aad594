// Copyright (c) 2022 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package v1 contains the error types that are returned to govhub callers.
// The error codes are part of the external interface and must not be
// renumbered.
package v1

import (
	"errors"
	"fmt"
)

// ErrCode represents an error that was caused by the caller.
type ErrCode uint32

const (
	// ErrCodeInvalid is an invalid error code.
	ErrCodeInvalid ErrCode = 0

	// ErrCodeNotFound is returned when a referenced proposal, RFP, post
	// or member does not exist.
	ErrCodeNotFound ErrCode = 1

	// ErrCodePermissionDenied is returned when the caller lacks the
	// action type required for a label delta or lacks the privilege
	// required for a timeline change.
	ErrCodePermissionDenied ErrCode = 2

	// ErrCodeInvariantViolation is returned when a mutation would break
	// member graph symmetry or RFP linkage bidirectionality.
	ErrCodeInvariantViolation ErrCode = 3

	// ErrCodeInvalidTransition is returned when a requested timeline
	// status is not reachable from the current status.
	ErrCodeInvalidTransition ErrCode = 4

	// ErrCodeSchemaMismatch is returned when a stored version tag is not
	// recognized by the reading code.
	ErrCodeSchemaMismatch ErrCode = 5

	// ErrCodeMemberExists is returned when a member is added twice.
	ErrCodeMemberExists ErrCode = 6

	// ErrCodeCategoryInvalid is returned when a proposal uses a
	// category that is not in the allowed categories list.
	ErrCodeCategoryInvalid ErrCode = 7

	// ErrCodeLabelInvalid is returned when an RFP uses a label that has
	// not been registered as a global label.
	ErrCodeLabelInvalid ErrCode = 8

	// ErrCodePayloadInvalid is returned when a payload can not be
	// decoded or is missing required fields.
	ErrCodePayloadInvalid ErrCode = 9

	// ErrCodeLast is used by unit tests to verify that all error codes
	// have a human readable entry in the ErrCodes map. It must remain
	// the last entry.
	ErrCodeLast ErrCode = 10
)

// ErrCodes contains the human readable error string for the error codes.
var ErrCodes = map[ErrCode]string{
	ErrCodeInvalid:            "invalid error code",
	ErrCodeNotFound:           "not found",
	ErrCodePermissionDenied:   "permission denied",
	ErrCodeInvariantViolation: "invariant violation",
	ErrCodeInvalidTransition:  "invalid timeline transition",
	ErrCodeSchemaMismatch:     "schema mismatch",
	ErrCodeMemberExists:       "member already exists",
	ErrCodeCategoryInvalid:    "invalid category",
	ErrCodeLabelInvalid:       "invalid label",
	ErrCodePayloadInvalid:     "invalid payload",
}

// UserErr represents an error that occurred during the execution of a
// command and that was caused by the caller.
type UserErr struct {
	Code    ErrCode
	Context string
}

// Error satisfies the error interface.
func (e UserErr) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("user err: %v", ErrCodes[e.Code])
	}
	return fmt.Sprintf("user err: %v - %v", ErrCodes[e.Code], e.Context)
}

// NewUserErr returns a new UserErr using the provided context format string.
func NewUserErr(code ErrCode, format string, a ...interface{}) UserErr {
	return UserErr{
		Code:    code,
		Context: fmt.Sprintf(format, a...),
	}
}

// ErrCodeOf returns the error code of the UserErr that the provided error
// wraps. ErrCodeInvalid is returned if the error is not a UserErr.
func ErrCodeOf(err error) ErrCode {
	var ue UserErr
	if errors.As(err, &ue) {
		return ue.Code
	}
	return ErrCodeInvalid
}
