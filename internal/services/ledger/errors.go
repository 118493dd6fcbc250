// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package ledger

import (
	"fmt"

	"codeberg.org/nodehub/nodehub/internal/services/duplicate"
)

// ValidationError reports a submission field that failed validation.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// DuplicateError reports that a node submission is already known.
type DuplicateError struct {
	Result duplicate.Result
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate submission: endpoint already present as %s #%d", e.Result.Source, e.Result.ID)
}
