package machine

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes machine errors.
type ErrorCode string

const (
	// CodeDuplicateNodeName indicates a node was registered under a name already in use.
	CodeDuplicateNodeName ErrorCode = "DUPLICATE_NODE_NAME"

	// CodeUnknownNodeName indicates a transition targeted a name with no registered node.
	CodeUnknownNodeName ErrorCode = "UNKNOWN_NODE_NAME"

	// CodeInternalConsistency indicates the current node has no registered name.
	CodeInternalConsistency ErrorCode = "INTERNAL_CONSISTENCY"
)

// Error is returned by registration and transition calls.
//
// None of these errors leave the machine partially updated: the registry and
// the current node are exactly as they were before the failing call.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Node is the offending node name, if any.
	Node string

	// Message is a human-readable description.
	Message string
}

// Sentinels for errors.Is. They match any *Error with the same Code.
var (
	ErrDuplicateNodeName   = &Error{Code: CodeDuplicateNodeName}
	ErrUnknownNodeName     = &Error{Code: CodeUnknownNodeName}
	ErrInternalConsistency = &Error{Code: CodeInternalConsistency}
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (node=%q)", e.Code, e.Message, e.Node)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return string(e.Code)
}

// Is reports whether target is a sentinel with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Node == "" && t.Message == "" && t.Code == e.Code
}

// IsDuplicateNodeName returns true if err is a duplicate registration error.
// Uses errors.As to handle wrapped errors.
func IsDuplicateNodeName(err error) bool {
	return hasCode(err, CodeDuplicateNodeName)
}

// IsUnknownNodeName returns true if err is an unknown transition target error.
func IsUnknownNodeName(err error) bool {
	return hasCode(err, CodeUnknownNodeName)
}

// IsInternalConsistency returns true if err reports a current node missing from the registry.
func IsInternalConsistency(err error) bool {
	return hasCode(err, CodeInternalConsistency)
}

func hasCode(err error, code ErrorCode) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}

func newDuplicateNodeName(name string) *Error {
	return &Error{
		Code:    CodeDuplicateNodeName,
		Node:    name,
		Message: "name already registered; registering it again would lose the previous node",
	}
}

func newUnknownNodeName(name string) *Error {
	return &Error{
		Code:    CodeUnknownNodeName,
		Node:    name,
		Message: "no node registered under this name",
	}
}

func newInternalConsistency() *Error {
	return &Error{
		Code:    CodeInternalConsistency,
		Message: "current node is not registered under any name",
	}
}
