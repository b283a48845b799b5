/**
 * @description
 * This file defines the error taxonomy for the onboarding saga. The HTTP layer
 * maps these types onto status codes; best-effort step failures never surface
 * here because the orchestrator swallows them at the step boundary.
 */
package app

import "fmt"

// ValidationError indicates the caller supplied an invalid or incomplete request.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// UpstreamError indicates a critical provider call was rejected. Details carries
// the upstream diagnostic for operability.
type UpstreamError struct {
	Msg     string
	Details string
}

func (e *UpstreamError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Msg, e.Details)
	}
	return e.Msg
}

// PersistenceError indicates the account store write failed after the provider
// calls succeeded.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist account record: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
