package services

import "errors"

var (
	// ErrNotFound means the requested record does not exist (or was soft
	// deleted).
	ErrNotFound = errors.New("services: not found")

	// ErrForbidden means the record exists but belongs to someone else.
	ErrForbidden = errors.New("services: forbidden")

	// ErrFormClosed means the form stopped accepting responses.
	ErrFormClosed = errors.New("services: form is not accepting responses")

	// ErrIncompleteAnswers means a clarification round was resubmitted
	// without an answer for every question.
	ErrIncompleteAnswers = errors.New("services: every clarification question needs a non-empty answer")
)
