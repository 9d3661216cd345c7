package review

import "errors"

var (
	ErrInvalidStatus   = errors.New("invalid review status")
	ErrInvalidResult   = errors.New("invalid review result")
	ErrLanguageMissing = errors.New("language is required")
	ErrCodeMissing     = errors.New("code submission is required")
)
