package graph

import (
	"errors"
	"testing"

	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		nodes   []types.Node
		valid   bool
		message string
	}{
		{
			name: "linear workflow",
			nodes: []types.Node{
				node("start-1", types.StepStart, false),
				node("email-1", types.StepEmail, false),
				node("end-1", types.StepEnd, false),
			},
			valid: true,
		},
		{
			name:    "empty workflow",
			nodes:   nil,
			message: MsgMissingStart,
		},
		{
			name: "no start node",
			nodes: []types.Node{
				node("email-1", types.StepEmail, false),
				node("end-1", types.StepEnd, false),
			},
			message: "Le workflow doit contenir exactement un nœud de départ",
		},
		{
			name: "two start nodes",
			nodes: []types.Node{
				node("start-1", types.StepStart, false),
				node("start-2", types.StepStart, false),
				node("end-1", types.StepEnd, false),
			},
			message: "Le workflow ne peut contenir qu'un seul nœud de départ",
		},
		{
			name: "no end node",
			nodes: []types.Node{
				node("start-1", types.StepStart, false),
				node("email-1", types.StepEmail, false),
			},
			message: "Le workflow doit contenir au moins un nœud de fin",
		},
		{
			name: "start rule wins over end rule",
			nodes: []types.Node{
				node("start-1", types.StepStart, false),
				node("start-2", types.StepStart, false),
			},
			message: MsgMultipleStart,
		},
		{
			name: "unknown step types are ignored",
			nodes: []types.Node{
				node("start-1", types.StepStart, false),
				node("weird", types.StepType("webhook"), false),
				node("end-1", types.StepEnd, false),
			},
			valid: true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			res := Validate(tc.nodes)
			require.Equal(t, tc.valid, res.IsValid)
			assert.Equal(t, tc.message, res.Error)
		})
	}
}

func TestCheckWrapsSentinels(t *testing.T) {
	t.Parallel()

	err := Check([]types.Node{node("end-1", types.StepEnd, false)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingStart))

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "validate", vErr.Op)

	err = Check([]types.Node{node("s1", types.StepStart, false), node("s2", types.StepStart, false)})
	assert.True(t, errors.Is(err, ErrMultipleStart))

	err = Check([]types.Node{node("s1", types.StepStart, false)})
	assert.True(t, errors.Is(err, ErrMissingEnd))

	assert.NoError(t, Check([]types.Node{node("s1", types.StepStart, false), node("f", types.StepEnd, false)}))
}
