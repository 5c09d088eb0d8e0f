package anilist

import (
	"errors"
	"fmt"
)

var (
	// ErrNoStructuredData indicates the head fragment carries no usable ld+json block.
	ErrNoStructuredData = errors.New("no structured data in head")

	// ErrUnknownValue indicates a value outside a field's fixed vocabulary.
	ErrUnknownValue = errors.New("unknown value")
)

// ParseError is returned by Extract when a fragment cannot be used at all.
type ParseError struct {
	Fragment string // "head" or "body"
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Fragment, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// FieldError records a single rejected field value. The field is left unset.
type FieldError struct {
	Field      string
	Value      string
	Suggestion string
}

func (e *FieldError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: %v %q (did you mean %q?)", e.Field, ErrUnknownValue, e.Value, e.Suggestion)
	}
	return fmt.Sprintf("%s: %v %q", e.Field, ErrUnknownValue, e.Value)
}

func (e *FieldError) Unwrap() error {
	return ErrUnknownValue
}
