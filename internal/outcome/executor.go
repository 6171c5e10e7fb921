// Package outcome decides how long a simulated step takes and whether it succeeds.
package outcome

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/avi3tal/stepflow/internal/logging"
	"github.com/avi3tal/stepflow/pkg/types"
)

const (
	DefaultMinDelay = 1000 * time.Millisecond
	DefaultMaxDelay = 3000 * time.Millisecond

	// EmailSuccessProbability is the chance an email step succeeds.
	EmailSuccessProbability = 0.7
)

// Executor runs one step and resolves its terminal status. Implementations must
// return ctx.Err() when ctx is cancelled while suspended.
type Executor interface {
	Execute(ctx context.Context, node types.Node) (types.ExecutionStatus, error)
}

// Previewer renders the content a step would emit, without emitting it.
type Previewer interface {
	Preview(node types.Node) (string, error)
}

// Decider maps a node to its terminal status.
type Decider func(node types.Node) types.ExecutionStatus

// Policy returns the default per-type outcome policy. draw must return values
// uniformly distributed in [0, 1).
func Policy(draw func() float64) Decider {
	return func(node types.Node) types.ExecutionStatus {
		switch node.Type {
		case types.StepStart, types.StepSMS, types.StepEnd:
			return types.StatusSuccess
		case types.StepEmail:
			return bernoulli(draw(), EmailSuccessProbability)
		case types.StepCustom:
			return bernoulli(draw(), float64(node.EffectiveSuccessRate())/100)
		default:
			return types.StatusFailure
		}
	}
}

// Always returns a Decider that resolves every node to status.
func Always(status types.ExecutionStatus) Decider {
	return func(types.Node) types.ExecutionStatus {
		return status
	}
}

func bernoulli(draw, p float64) types.ExecutionStatus {
	if draw < p {
		return types.StatusSuccess
	}
	return types.StatusFailure
}

// Simulator is the default Executor: it sleeps for a random duration, then asks
// its Decider for the outcome.
type Simulator struct {
	decide   Decider
	minDelay time.Duration
	maxDelay time.Duration
	notifier *Notifier

	mu  sync.Mutex
	rnd *rand.Rand
}

// Option configures a Simulator
type Option func(*Simulator)

// WithDecider replaces the outcome policy
func WithDecider(d Decider) Option {
	return func(s *Simulator) {
		s.decide = d
	}
}

// WithDelay sets the range the simulated duration is drawn from, [min, max)
func WithDelay(minDelay, maxDelay time.Duration) Option {
	return func(s *Simulator) {
		s.minDelay = minDelay
		s.maxDelay = maxDelay
	}
}

// WithSeed makes random draws reproducible
func WithSeed(seed int64) Option {
	return func(s *Simulator) {
		s.rnd = rand.New(rand.NewSource(seed))
	}
}

// WithNotifier sets the notifier used for previews
func WithNotifier(n *Notifier) Option {
	return func(s *Simulator) {
		s.notifier = n
	}
}

// NewSimulator creates a Simulator with the default policy and delay range.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		minDelay: DefaultMinDelay,
		maxDelay: DefaultMaxDelay,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		notifier: NewNotifier(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.decide == nil {
		s.decide = Policy(s.draw)
	}
	return s
}

// Execute implements Executor.
func (s *Simulator) Execute(ctx context.Context, node types.Node) (types.ExecutionStatus, error) {
	delay := s.duration()
	logging.FromContext(ctx).Debug("simulating step",
		"node_id", node.ID,
		"step_type", string(node.Type),
		"delay", delay,
	)

	if err := Sleep(ctx, delay); err != nil {
		return "", err
	}
	return s.decide(node), nil
}

// Preview implements Previewer.
func (s *Simulator) Preview(node types.Node) (string, error) {
	if s.notifier == nil {
		return "", nil
	}
	return s.notifier.Preview(node)
}

func (s *Simulator) duration() time.Duration {
	if s.maxDelay <= s.minDelay {
		return s.minDelay
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minDelay + time.Duration(s.rnd.Int63n(int64(s.maxDelay-s.minDelay)))
}

func (s *Simulator) draw() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
