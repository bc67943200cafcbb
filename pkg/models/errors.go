package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyBatch is returned when a request carries zero records.
var ErrEmptyBatch = errors.New("empty batch: at least one sales record is required")

// Constraint names reported in FieldError.Constraint.
const (
	ConstraintRequired   = "required"
	ConstraintType       = "type"
	ConstraintNotEmpty   = "not_empty"
	ConstraintPositive   = "positive"
	ConstraintRange      = "range"
	ConstraintArray      = "array"
	ConstraintObject     = "object"
	ConstraintMaxRecords = "max_records"
)

// FieldError は1つの制約違反を表します。Index が -1 の場合はリクエスト全体に対するエラーです。
type FieldError struct {
	Index      int    `json:"index"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint"`
	Message    string `json:"message"`
}

func (e FieldError) String() string {
	if e.Index < 0 {
		return e.Message
	}
	if e.Field == "" {
		return fmt.Sprintf("record %d: %s", e.Index, e.Message)
	}
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Field, e.Message)
}

// ValidationError collects every constraint violation found in a batch.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(f FieldError) {
	e.Fields = append(e.Fields, f)
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}
