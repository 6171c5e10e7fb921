package types

import "time"

// DefaultSuccessRate is used for custom steps that do not set one.
const DefaultSuccessRate = 80

// Node is a single step of the workflow graph
type Node struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	Type                  StepType        `json:"stepType"`
	Description           string          `json:"description,omitempty"`
	HasConditionalOutputs bool            `json:"hasConditionalOutputs,omitempty"`
	SuccessRate           *int            `json:"successRate,omitempty"` // 0-100, custom steps only
	Status                ExecutionStatus `json:"status,omitempty"`
}

// EffectiveSuccessRate returns the success rate in percent, applying the default
// and clamping to [0, 100].
func (n Node) EffectiveSuccessRate() int {
	if n.SuccessRate == nil {
		return DefaultSuccessRate
	}
	rate := *n.SuccessRate
	if rate < 0 {
		return 0
	}
	if rate > 100 {
		return 100
	}
	return rate
}

// Normalize drops conditional outputs from steps that cannot carry them.
func (n Node) Normalize() Node {
	if n.Type == StepStart || n.Type == StepEnd {
		n.HasConditionalOutputs = false
	}
	return n
}

// Edge connects the output handle of one node to the input of another
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle Handle `json:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// LogEntry records one status change observed during a run
type LogEntry struct {
	NodeID    string          `json:"nodeId"`
	NodeName  string          `json:"nodeName"`
	Status    ExecutionStatus `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Duration  *time.Duration  `json:"duration,omitempty"` // terminal entries only
	Message   string          `json:"message,omitempty"`
}

// StatusFunc receives status changes for a node id.
type StatusFunc func(nodeID string, status ExecutionStatus)

// ValidationResult is the outcome of the structural pre-flight check
type ValidationResult struct {
	IsValid bool   `json:"isValid"`
	Error   string `json:"error,omitempty"`
}
