package graph

import (
	"fmt"

	"github.com/pkg/errors"
)

// Structural validation messages, shown to the user as-is.
const (
	MsgMissingStart  = "Le workflow doit contenir exactement un nœud de départ"
	MsgMultipleStart = "Le workflow ne peut contenir qu'un seul nœud de départ"
	MsgMissingEnd    = "Le workflow doit contenir au moins un nœud de fin"
)

var (
	// ErrMissingStart is returned when the workflow has no start node
	ErrMissingStart = errors.New(MsgMissingStart)

	// ErrMultipleStart is returned when the workflow has more than one start node
	ErrMultipleStart = errors.New(MsgMultipleStart)

	// ErrMissingEnd is returned when the workflow has no end node
	ErrMissingEnd = errors.New(MsgMissingEnd)

	// ErrNodeNotFound is returned when referencing a non-existent node
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when adding a node that already exists
	ErrDuplicateNode = errors.New("node with this ID already exists")

	// ErrInvalidEdge is returned when an edge violates the handle rules
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrInvalidStepType is returned for a step type outside the known set
	ErrInvalidStepType = errors.New("invalid step type")
)

// ValidationError represents an error that occurs during graph validation
type ValidationError struct {
	// Op is the operation that failed
	Op string
	// Node is the ID of the node involved (if any)
	Node string
	// Err is the underlying error
	Err error
}

func (e *ValidationError) Error() string {
	if e.Node != "" {
		return fmt.Sprintf("validation failed: %s: node '%s': %v", e.Op, e.Node, e.Err)
	}
	return fmt.Sprintf("validation failed: %s: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError
func NewValidationError(op string, node string, err error) error {
	return &ValidationError{
		Op:   op,
		Node: node,
		Err:  err,
	}
}

// ExecutionError represents an error during a simulation run
type ExecutionError struct {
	// Phase is the execution phase where the error occurred
	Phase string
	// Node is the ID of the node being executed
	Node string
	// Err is the underlying error
	Err error
}

func (e *ExecutionError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("execution error: %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("execution error: %s: node '%s': %v", e.Phase, e.Node, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError creates a new ExecutionError
func NewExecutionError(phase string, node string, err error) error {
	return &ExecutionError{
		Phase: phase,
		Node:  node,
		Err:   err,
	}
}
