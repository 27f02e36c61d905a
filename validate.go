package uploadkit

import (
	"fmt"
	"net/url"
)

// Validation error codes, in precedence order.
const (
	CodeMinCount         = "min_count"
	CodeMaxCount         = "max_count"
	CodeMalformedLocator = "malformed_locator"
)

// ValidationError reports the first violated rule for a collection.
type ValidationError struct {
	// Code identifies the violated rule.
	Code string

	// Message is the human-readable description.
	Message string

	// Index is the insertion-order position of the offending locator for
	// malformed-locator violations, -1 otherwise.
	Index int
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.Message }

// Validator checks a snapshot of tracked files against count constraints
// and locator well-formedness. It is pure: same snapshot, same result.
type Validator struct {
	// MinCount is the minimum number of settled files. Zero disables the rule.
	MinCount int

	// MaxCount is the maximum number of settled files. Zero disables the rule.
	MaxCount int

	// CountUploading counts in-flight entries toward the minimum.
	// Off by default: only settled locators satisfy the minimum.
	CountUploading bool
}

// Validate returns nil when every rule passes, otherwise the first violated
// rule in precedence order: minimum count, maximum count, then the first
// malformed locator in insertion order.
func (v Validator) Validate(files []TrackedFile) error {
	settled := make([]string, 0, len(files))
	uploading := 0
	for _, f := range files {
		switch f.Phase {
		case PhaseResolved, PhaseDeleting:
			settled = append(settled, f.DisplayRef)
		case PhaseUploading, PhasePending:
			uploading++
		}
	}

	minEligible := len(settled)
	if v.CountUploading {
		minEligible += uploading
	}

	if v.MinCount > 0 && minEligible < v.MinCount {
		return &ValidationError{
			Code:    CodeMinCount,
			Message: fmt.Sprintf("at least %d file(s) required, have %d", v.MinCount, minEligible),
			Index:   -1,
		}
	}

	if v.MaxCount > 0 && len(settled) > v.MaxCount {
		return &ValidationError{
			Code:    CodeMaxCount,
			Message: fmt.Sprintf("at most %d file(s) allowed, have %d", v.MaxCount, len(settled)),
			Index:   -1,
		}
	}

	for i, locator := range settled {
		if !wellFormedLocator(locator) {
			return &ValidationError{
				Code:    CodeMalformedLocator,
				Message: fmt.Sprintf("file %d has a malformed locator: %q", i+1, locator),
				Index:   i,
			}
		}
	}

	return nil
}

// Validate runs the validator against the current collection snapshot.
func (u *Uploader) Validate(v Validator) error {
	return v.Validate(u.Entries())
}

func wellFormedLocator(locator string) bool {
	parsed, err := url.Parse(locator)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
