package story

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCollaborator = errors.New("story: collaborator not available")
	ErrUnknownTrack        = errors.New("story: unknown animation track")
	ErrMissingProperty     = errors.New("story: property not set")
	ErrIncomparable        = errors.New("story: values cannot be compared")
	ErrNilState            = errors.New("story: nil state")
	ErrDuplicateSuccessor  = errors.New("story: successor already registered")
	ErrSubStepCycle        = errors.New("story: sub-step cycle")
	ErrSubStepSuccessor    = errors.New("story: sub-step has successors")
	ErrUnsupportedPart     = errors.New("story: unsupported builder part")
)

// ActionResolutionError reports an action that could not run, usually
// because its target resource or collaborator is missing. The action is
// skipped and the frame continues.
type ActionResolutionError struct {
	State  string
	Action string
	Err    error
}

func (e *ActionResolutionError) Error() string {
	return fmt.Sprintf("story: state %q: action %s: %v", e.State, e.Action, e.Err)
}

func (e *ActionResolutionError) Unwrap() error { return e.Err }

// ConditionEvaluationError reports a malformed condition. The condition is
// treated as false from then on.
type ConditionEvaluationError struct {
	State     string
	Condition string
	Err       error
}

func (e *ConditionEvaluationError) Error() string {
	return fmt.Sprintf("story: state %q: condition %s: %v", e.State, e.Condition, e.Err)
}

func (e *ConditionEvaluationError) Unwrap() error { return e.Err }

// GraphConstructionError reports a graph that cannot be run.
type GraphConstructionError struct {
	State string
	Err   error
}

func (e *GraphConstructionError) Error() string {
	return fmt.Sprintf("story: state %q: %v", e.State, e.Err)
}

func (e *GraphConstructionError) Unwrap() error { return e.Err }

func missing(what string) error {
	return fmt.Errorf("%w: %s", ErrMissingCollaborator, what)
}

// recovered turns a recovered panic value into an error.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", r)
}
