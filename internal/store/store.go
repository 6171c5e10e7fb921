// Package store persists the workflow graph between sessions. Only nodes and
// edges are kept; the execution log never is.
package store

import (
	"context"
	"time"

	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Load when nothing has been saved yet
var ErrNotFound = errors.New("no saved workflow")

// Flow is the persisted form of a workflow graph
type Flow struct {
	Nodes   []types.Node `json:"nodes"`
	Edges   []types.Edge `json:"edges"`
	SavedAt time.Time    `json:"lastSaved"`
}

// Store saves and restores a single workflow graph.
type Store interface {
	// Save replaces the saved graph and stamps SavedAt.
	Save(ctx context.Context, flow Flow) error
	// Load returns the saved graph or ErrNotFound.
	Load(ctx context.Context) (Flow, error)
	// Clear removes the saved graph.
	Clear(ctx context.Context) error
	// Exists reports whether a graph has been saved.
	Exists(ctx context.Context) (bool, error)
	// LastSaved returns the time of the last Save, or ErrNotFound.
	LastSaved(ctx context.Context) (time.Time, error)
}

func encode(flow Flow) ([]byte, error) {
	data, err := json.Marshal(flow)
	if err != nil {
		return nil, errors.Wrap(err, "encode flow")
	}
	return data, nil
}

func decode(data []byte) (Flow, error) {
	var flow Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return Flow{}, errors.Wrap(err, "decode flow")
	}
	return flow, nil
}
