// Package common defines shared constants and sentinel errors used across
// the schema registry, repositories and services. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Schema errors.
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownNodeType = errors.New("unknown node type")

	// Tree errors.
	ErrInvalidHierarchy  = errors.New("invalid hierarchy")
	ErrSterileNode       = errors.New("node cannot have children")
	ErrNodeLocked        = errors.New("node is locked")
	ErrPositionExhausted = errors.New("position precision exhausted")

	// Generic validation failure; wrap it with the offending field name.
	ErrorValidation = errors.New("validation error")

	// Irreversible operations require explicit operator confirmation.
	ErrConfirmationRequired = errors.New("confirmation required")
)
