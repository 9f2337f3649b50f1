// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for the
// swarm orchestrator and the TrustGraph ledger.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies swarm errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeCapabilityFailure indicates a capability invocation failed.
	// Workflows tolerate these per kind; they never abort a run.
	CodeCapabilityFailure ErrorCode = "CAPABILITY_FAILURE"

	// CodeLedgerIO indicates the TrustGraph ledger could not be read or
	// written. Never masked: a chain head that cannot be read is an error,
	// not a genesis.
	CodeLedgerIO ErrorCode = "LEDGER_IO"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeAuditRejected indicates the meta-audit scored a result below the
	// pass threshold.
	CodeAuditRejected ErrorCode = "AUDIT_REJECTED"

	// CodeRegistryError indicates a capability registry problem, such as a
	// workflow naming a kind with no registered instance.
	CodeRegistryError ErrorCode = "REGISTRY_ERROR"
)

// SwarmError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type SwarmError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
	StatusCode  int // For HTTP responses
}

// Error implements the error interface.
func (e *SwarmError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *SwarmError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *SwarmError) MarshalJSON() ([]byte, error) {
	type Alias SwarmError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new SwarmError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *SwarmError {
	return &SwarmError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *SwarmError) WithContext(key string, value interface{}) *SwarmError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *SwarmError) WithAttribute(key, value string) *SwarmError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *SwarmError) WithRecoverable(recoverable bool) *SwarmError {
	e.Recoverable = recoverable
	return e
}

// AsSwarmError attempts to convert an error to a SwarmError.
// Returns the error as SwarmError if it is one, or wraps it otherwise.
func AsSwarmError(err error) *SwarmError {
	if err == nil {
		return nil
	}
	if se, ok := err.(*SwarmError); ok {
		return se
	}
	// Wrap unknown error as internal
	return New(CodeInternal, "wrapped error", err)
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *SwarmError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return 404 // NOT_FOUND
	case CodeInvalidInput:
		return 400 // INVALID_ARGUMENT
	case CodeTimeout:
		return 408 // DEADLINE_EXCEEDED
	case CodeAuditRejected:
		return 409 // CONFLICT
	default:
		return 500 // INTERNAL
	}
}
