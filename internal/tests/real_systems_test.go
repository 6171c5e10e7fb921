package tests

import (
	"context"
	"testing"

	"github.com/avi3tal/stepflow/internal/format"
	"github.com/avi3tal/stepflow/internal/store"
	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/avi3tal/stepflow/pkg/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An e-commerce recovery flow: email first, then an sms and a coupon when the
// email fails. Every end step has a single incoming edge.
const cartRecovery = `
step "start" {
  type = "start"
  name = "Panier abandonné"
}

step "mail" {
  type        = "email"
  name        = "Email de relance"
  description = "Votre panier vous attend"
  conditional = true
}

step "sms" {
  type        = "sms"
  name        = "SMS de relance"
  description = "Dernière chance"
}

step "coupon" {
  type         = "custom"
  name         = "Coupon"
  success_rate = 50
  conditional  = true
}

step "converted" {
  type = "end"
  name = "Converti"
}

step "recovered" {
  type = "end"
  name = "Récupéré"
}

step "lost" {
  type = "end"
  name = "Perdu"
}

edge {
  from = "start"
  to   = "mail"
}

edge {
  from   = "mail"
  to     = "converted"
  handle = "success"
}

edge {
  from   = "mail"
  to     = "sms"
  handle = "failure"
}

edge {
  from = "sms"
  to   = "coupon"
}

edge {
  from   = "coupon"
  to     = "recovered"
  handle = "success"
}

edge {
  from   = "coupon"
  to     = "lost"
  handle = "failure"
}
`

// An onboarding flow exported from the editor: two welcome messages joined
// before the end.
const onboarding = `{
  "nodes": [
    {"id": "start", "data": {"name": "Inscription", "stepType": "start"}},
    {"id": "welcome-mail", "data": {"name": "Email de bienvenue", "stepType": "email"}},
    {"id": "welcome-sms", "data": {"name": "SMS de bienvenue", "stepType": "sms"}},
    {"id": "end", "data": {"name": "Fin", "stepType": "end"}}
  ],
  "edges": [
    {"id": "a", "source": "start", "target": "welcome-mail"},
    {"id": "b", "source": "start", "target": "welcome-sms"},
    {"id": "c", "source": "welcome-mail", "target": "end"},
    {"id": "d", "source": "welcome-sms", "target": "end"}
  ]
}`

func TestCartRecovery(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		outcomes  map[string]types.ExecutionStatus
		completed []string
		pending   []string
	}{
		{
			name:      "email converts",
			outcomes:  nil,
			completed: []string{"start", "mail", "converted"},
			pending:   []string{"sms", "coupon", "recovered", "lost"},
		},
		{
			name:      "coupon recovers after sms",
			outcomes:  map[string]types.ExecutionStatus{"mail": types.StatusFailure},
			completed: []string{"start", "mail", "sms", "coupon", "recovered"},
			pending:   []string{"converted", "lost"},
		},
		{
			name:      "everything fails",
			outcomes:  map[string]types.ExecutionStatus{"mail": types.StatusFailure, "coupon": types.StatusFailure},
			completed: []string{"start", "mail", "sms", "coupon", "lost"},
			pending:   []string{"converted", "recovered"},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			app := newApp(decode(t, format.HCL, cartRecovery), byID(tc.outcomes))

			report := invoke(t, app)
			assert.Equal(t, tc.completed, report.Completed)
			assert.Equal(t, tc.pending, report.Pending)

			statuses := finalStatuses(app)
			for _, id := range tc.pending {
				assert.Equal(t, types.StatusPending, statuses[id], id)
			}
			assert.Len(t, app.Log(), 2*len(tc.completed))
		})
	}
}

func TestOnboardingJoin(t *testing.T) {
	t.Parallel()
	app := newApp(decode(t, format.JSON, onboarding), byID(map[string]types.ExecutionStatus{
		"welcome-mail": types.StatusFailure,
	}))

	report := invoke(t, app)
	assert.Equal(t, []string{"start", "welcome-mail", "welcome-sms", "end"}, report.Completed)

	// the end step runs once, after both welcome steps
	endEntries := 0
	for _, e := range app.Log() {
		if e.NodeID == "end" {
			endEntries++
		}
	}
	assert.Equal(t, 2, endEntries)
}

func TestReloadedFlowRunsTheSame(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, err := store.Open("", nil)
	require.NoError(t, err)
	defer s.Close()

	outcomes := byID(map[string]types.ExecutionStatus{"mail": types.StatusFailure})
	original := newApp(decode(t, format.HCL, cartRecovery), outcomes, workflow.WithStore(s))
	first := invoke(t, original)
	require.NoError(t, original.Save(ctx))

	restored := newApp(format.Document{}, outcomes, workflow.WithStore(s))
	require.NoError(t, restored.Load(ctx))
	for id, status := range finalStatuses(restored) {
		assert.Equal(t, types.StatusPending, status, id)
	}

	second := invoke(t, restored)
	assert.Equal(t, first.Completed, second.Completed)
	assert.Equal(t, first.Pending, second.Pending)
}
