package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrFolderCreation = errors.New("folder creation failed")
	ErrExtraction     = errors.New("text extraction failed")
	ErrMove           = errors.New("move failed")
	ErrRunNotFound    = errors.New("run not found")
	ErrTemporary      = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

type FailureKind string

const (
	FailureFolderCreation FailureKind = "folder_creation"
	FailureExtraction     FailureKind = "extraction"
	FailureMove           FailureKind = "move"
	FailureUnknown        FailureKind = "unknown"
)

// KindOf maps a wrapped error onto the failure taxonomy reported to callers.
func KindOf(err error) FailureKind {
	switch {
	case IsKind(err, ErrFolderCreation):
		return FailureFolderCreation
	case IsKind(err, ErrExtraction):
		return FailureExtraction
	case IsKind(err, ErrMove):
		return FailureMove
	default:
		return FailureUnknown
	}
}
