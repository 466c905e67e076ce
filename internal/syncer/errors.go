package syncer

import (
	"errors"
	"fmt"
)

// Steps reported by EntryError.
const (
	StepRetrieve = "failed to retrieve secret"
	StepWrite    = "failed to write secret file"
	StepRead     = "failed to read secret file"
	StepStore    = "failed to store secret"
)

// EntryError annotates a failure with the entry and step it happened in.
//
// The underlying store or file error stays reachable through Unwrap.
type EntryError struct {
	// Op is "pull" or "push".
	Op    string
	Step  string
	Entry Entry
	Err   error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s %q for %q: %v", e.Step, e.Entry.SecretName, e.Entry.label(), e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// FilterEmptyError is returned when a filter matched none of a non-empty
// set of entries.
type FilterEmptyError struct {
	// Source names where the entries came from, usually the manifest path.
	Source string
}

func (e *FilterEmptyError) Error() string {
	return fmt.Sprintf("no files matching filter within %q", e.Source)
}

// CheckSelection turns an empty selection from a non-empty manifest into a
// *FilterEmptyError. An empty manifest is not an error.
func CheckSelection(total, selected int, source string) error {
	if total > 0 && selected == 0 {
		return &FilterEmptyError{Source: source}
	}
	return nil
}

// Completed returns how many entries finished before err stopped a run over
// entries. It returns len(entries) when err is nil.
func Completed(entries []Entry, err error) int {
	if err == nil {
		return len(entries)
	}

	var entryErr *EntryError
	if !errors.As(err, &entryErr) {
		return 0
	}
	for i, entry := range entries {
		if entry.Name == entryErr.Entry.Name && entry.Path == entryErr.Entry.Path {
			return i
		}
	}
	return 0
}
