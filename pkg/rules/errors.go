package rules

import (
	"errors"
	"fmt"

	"github.com/kr/pretty"
)

// ErrConfigurationInconsistency marks every failure caused by the rule tables
// disagreeing with the feed or with themselves. Callers abort the run on it.
var ErrConfigurationInconsistency = errors.New("configuration inconsistency")

// InconsistencyError carries the offending record alongside the value that
// could not be reconciled.
type InconsistencyError struct {
	Kind   string
	Record any
	Value  string
	Reason string

	Err error
}

func Inconsistency(kind string, record any, value string, reason string) *InconsistencyError {
	return &InconsistencyError{
		Kind:   kind,
		Record: record,
		Value:  value,
		Reason: reason,
	}
}

func (e *InconsistencyError) Error() string {
	message := fmt.Sprintf("%s: %s %q %s", ErrConfigurationInconsistency, e.Kind, e.Value, e.Reason)

	if e.Err != nil {
		message = fmt.Sprintf("%s: %s", message, e.Err)
	}

	if e.Record != nil {
		message = fmt.Sprintf("%s\n%s", message, pretty.Sprint(e.Record))
	}

	return message
}

func (e *InconsistencyError) Is(target error) bool {
	return target == ErrConfigurationInconsistency
}

func (e *InconsistencyError) Unwrap() error {
	return e.Err
}
