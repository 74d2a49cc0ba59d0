package errors

import (
	"errors"
	"strings"
)

// Classification buckets an upstream API failure for the refresh cycle.
// Authentication triggers the one-shot session reset, Transport and Unknown
// are per-device skips.
type Classification int

const (
	ClassUnknown Classification = iota
	ClassAuthentication
	ClassTransport
)

// String returns the string representation of the classification
func (c Classification) String() string {
	switch c {
	case ClassAuthentication:
		return "authentication"
	case ClassTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Vendor error codes that invalidate the current token
const (
	CodeUnauthorized = 401
	CodeTokenInvalid = 5032 // Pecron "Token validation failed"
)

// coder is implemented by errors that carry a numeric vendor code
// (pecron.APIError does)
type coder interface {
	ErrorCode() int
}

var authNeedles = []string{"authentication", "token", "unauthorized", "401"}
var transportNeedles = []string{"connection", "timeout", "network"}

// Classify inspects an upstream error's embedded code and message and buckets
// it per the coordinator's recovery policy. Matching is case-insensitive and
// authentication wins over transport when both would match.
func Classify(err error) Classification {
	if err == nil {
		return ClassUnknown
	}

	var c coder
	if errors.As(err, &c) {
		switch c.ErrorCode() {
		case CodeUnauthorized, CodeTokenInvalid:
			return ClassAuthentication
		}
	}

	msg := strings.ToLower(err.Error())
	for _, needle := range authNeedles {
		if strings.Contains(msg, needle) {
			return ClassAuthentication
		}
	}
	for _, needle := range transportNeedles {
		if strings.Contains(msg, needle) {
			return ClassTransport
		}
	}

	return ClassUnknown
}
