// Copyright (c) 2026 The Props Protocol developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the error taxonomy of the staking protocol.
// Every rejected operation carries exactly one category and a
// human-readable reason; there is no generic catch-all failure.
package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a rejection.
type Kind uint8

const (
	// KindAuthorization - caller lacks the required role or relationship.
	KindAuthorization Kind = iota + 1
	// KindInvalidState - unknown entity, double-set one-time field, or
	// operating outside the valid time window.
	KindInvalidState
	// KindInsufficientBalance - arithmetic would drive a balance negative.
	KindInsufficientBalance
	// KindIntegrity - submitted data does not match its commitment, or a
	// value exceeds its representable range.
	KindIntegrity
	// KindPolicyViolation - operation is well formed but breaks protocol
	// policy (variation cap, blacklisted app).
	KindPolicyViolation
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindInvalidState:
		return "invalid state"
	case KindInsufficientBalance:
		return "insufficient balance"
	case KindIntegrity:
		return "integrity"
	case KindPolicyViolation:
		return "policy violation"
	default:
		return "unknown"
	}
}

// Error is a categorized rejection.
type Error struct {
	kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

// Kind returns the rejection category.
func (e *Error) Kind() Kind {
	return e.kind
}

func newError(kind Kind, format string, args ...any) error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Auth creates an authorization error.
func Auth(format string, args ...any) error {
	return newError(KindAuthorization, format, args...)
}

// InvalidState creates an invalid-state error.
func InvalidState(format string, args ...any) error {
	return newError(KindInvalidState, format, args...)
}

// Insufficient creates an insufficient-balance error.
func Insufficient(format string, args ...any) error {
	return newError(KindInsufficientBalance, format, args...)
}

// Integrity creates an integrity error.
func Integrity(format string, args ...any) error {
	return newError(KindIntegrity, format, args...)
}

// Policy creates a policy-violation error.
func Policy(format string, args ...any) error {
	return newError(KindPolicyViolation, format, args...)
}

// Is reports whether err belongs to the given category.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == kind
	}
	return false
}

// IsAuth reports whether err is an authorization error.
func IsAuth(err error) bool { return Is(err, KindAuthorization) }

// IsInvalidState reports whether err is an invalid-state error.
func IsInvalidState(err error) bool { return Is(err, KindInvalidState) }

// IsInsufficient reports whether err is an insufficient-balance error.
func IsInsufficient(err error) bool { return Is(err, KindInsufficientBalance) }

// IsIntegrity reports whether err is an integrity error.
func IsIntegrity(err error) bool { return Is(err, KindIntegrity) }

// IsPolicy reports whether err is a policy-violation error.
func IsPolicy(err error) bool { return Is(err, KindPolicyViolation) }
