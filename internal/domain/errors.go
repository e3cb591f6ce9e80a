package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMilestoneNotConfirmed reports that the forge accepted a milestone
	// update but did not echo the milestone back. Callers should surface it
	// as a warning, not a failure.
	ErrMilestoneNotConfirmed = errors.New("milestone update was accepted but not confirmed by the server")

	ErrInvalidIdentifierFormat = errors.New("invalid PR identifier format")
)

// ValidationError carries the per-field messages of a rejected write
// (HTTP 422 on a GitHub-style forge).
type ValidationError struct {
	Message  string
	Messages []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if len(e.Messages) > 0 {
		parts = append(parts, strings.Join(e.Messages, " AND "))
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return strings.Join(parts, ". ")
}

type NotFoundError struct{}

func (e *NotFoundError) Error() string {
	return "not found"
}

type AuthError struct{}

func (e *AuthError) Error() string {
	return "authentication failed: check that the token is valid and has repo scope"
}

// UnknownError wraps any failure the classifier has no mapping for, keeping
// the payload untouched for diagnostics.
type UnknownError struct {
	Status int
	Raw    string
}

func (e *UnknownError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("unexpected response (status %d): %s", e.Status, e.Raw)
	}
	return e.Raw
}
