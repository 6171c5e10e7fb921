package graph

import (
	"github.com/avi3tal/stepflow/pkg/types"
)

// Validate runs the structural pre-flight checks. Rules are checked in order and
// the first failure wins.
func Validate(nodes []types.Node) types.ValidationResult {
	if err := checkStructure(nodes); err != nil {
		return types.ValidationResult{IsValid: false, Error: err.Error()}
	}
	return types.ValidationResult{IsValid: true}
}

// Check is Validate in error form; the returned *ValidationError wraps one of
// ErrMissingStart, ErrMultipleStart or ErrMissingEnd.
func Check(nodes []types.Node) error {
	if err := checkStructure(nodes); err != nil {
		return NewValidationError("validate", "", err)
	}
	return nil
}

func checkStructure(nodes []types.Node) error {
	starts, ends := 0, 0
	for _, n := range nodes {
		switch n.Type {
		case types.StepStart:
			starts++
		case types.StepEnd:
			ends++
		}
	}

	switch {
	case starts == 0:
		return ErrMissingStart
	case starts > 1:
		return ErrMultipleStart
	case ends == 0:
		return ErrMissingEnd
	}
	return nil
}

// StartNode returns the first start node of the snapshot.
func StartNode(nodes []types.Node) (types.Node, bool) {
	for _, n := range nodes {
		if n.Type == types.StepStart {
			return n, true
		}
	}
	return types.Node{}, false
}
