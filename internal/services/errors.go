package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrResourceMissing = errors.New("resource missing")
	ErrParse           = errors.New("parse failure")
	ErrCollaborator    = errors.New("collaborator failure")
	ErrSchemaViolation = errors.New("schema violation")
	ErrConfiguration   = errors.New("configuration error")
	ErrTransient       = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Classified reports whether the error already carries one of the sentinel
// markers, so callers can avoid stacking a second classification on top.
func Classified(err error) bool {
	for _, marker := range []error{
		ErrResourceMissing, ErrParse, ErrCollaborator,
		ErrSchemaViolation, ErrConfiguration, ErrTransient,
	} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}

// IsFatalToStage reports whether the error must abort the running stage rather
// than skip the affected record. Schema violations imply a logic bug upstream
// and are never swallowed.
func IsFatalToStage(err error) bool {
	switch {
	case errors.Is(err, ErrSchemaViolation), errors.Is(err, ErrConfiguration):
		return true
	default:
		return false
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
