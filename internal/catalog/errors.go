package catalog

import "fmt"

// UnknownOfferingError reports a selection referencing an offering the
// active catalog does not carry. Callers must treat it as a rejected turn.
type UnknownOfferingError struct {
	Catalog string
	ID      OfferingID
}

func (e *UnknownOfferingError) Error() string {
	return fmt.Sprintf("unknown offering %q in catalog %q", e.ID, e.Catalog)
}

// InvalidBaselineError reports an out-of-range baseline mutation. The prior
// baseline is always retained when this is returned.
type InvalidBaselineError struct {
	Field  string
	Reason string
}

func (e *InvalidBaselineError) Error() string {
	return fmt.Sprintf("invalid baseline field %s: %s", e.Field, e.Reason)
}
