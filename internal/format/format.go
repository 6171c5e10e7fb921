// Package format reads and writes workflow graphs as JSON or HCL files.
package format

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/avi3tal/stepflow/internal/graph"
	"github.com/avi3tal/stepflow/internal/logging"
	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/pkg/errors"
)

// Format identifies a file encoding
type Format string

const (
	JSON Format = "json"
	HCL  Format = "hcl"
)

// ErrUnknownFormat is returned for file extensions other than .json and .hcl
var ErrUnknownFormat = errors.New("unknown workflow file format")

// Document is a workflow graph as read from or written to a file
type Document struct {
	Nodes []types.Node
	Edges []types.Edge
}

// Detect picks the format from the file extension.
func Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".hcl":
		return HCL, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%s", path)
	}
}

// LoadFile reads and decodes a workflow file.
func LoadFile(ctx context.Context, path string) (Document, error) {
	f, err := Detect(path)
	if err != nil {
		return Document{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrapf(err, "read %s", path)
	}
	return Decode(ctx, f, data, path)
}

// WriteFile encodes doc in the format matching path's extension.
func WriteFile(path string, doc Document) error {
	f, err := Detect(path)
	if err != nil {
		return err
	}
	data, err := Encode(f, doc)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(path, data, 0o644), "write %s", path)
}

// Decode parses data and sanitizes the result: nodes are checked and
// normalized, edges that break the handle rules are dropped.
func Decode(ctx context.Context, f Format, data []byte, filename string) (Document, error) {
	var (
		doc Document
		err error
	)
	switch f {
	case JSON:
		doc, err = decodeJSON(data)
	case HCL:
		doc, err = decodeHCL(data, filename)
	default:
		return Document{}, errors.Wrapf(ErrUnknownFormat, "%q", f)
	}
	if err != nil {
		return Document{}, errors.Wrapf(err, "decode %s", filename)
	}
	return sanitize(ctx, doc, filename)
}

// Encode renders doc in format f.
func Encode(f Format, doc Document) ([]byte, error) {
	switch f {
	case JSON:
		return encodeJSON(doc)
	case HCL:
		return encodeHCL(doc), nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", f)
	}
}

func sanitize(ctx context.Context, doc Document, filename string) (Document, error) {
	seen := make(map[string]bool, len(doc.Nodes))
	nodes := make([]types.Node, 0, len(doc.Nodes))
	for _, n := range doc.Nodes {
		switch {
		case n.ID == "":
			return Document{}, graph.NewValidationError("load", "", errors.New("node without id"))
		case seen[n.ID]:
			return Document{}, graph.NewValidationError("load", n.ID, graph.ErrDuplicateNode)
		case !n.Type.Valid():
			return Document{}, graph.NewValidationError("load", n.ID, graph.ErrInvalidStepType)
		}
		seen[n.ID] = true

		n = n.Normalize()
		if n.Status == "" {
			n.Status = types.StatusPending
		}
		nodes = append(nodes, n)
	}

	edges := graph.CleanInvalidEdges(doc.Edges, nodes)
	if dropped := len(doc.Edges) - len(edges); dropped > 0 {
		logging.FromContext(ctx).Warn("dropped invalid edges", "file", filename, "count", dropped)
	}

	logging.FromContext(ctx).Debug("workflow loaded", "file", filename, "nodes", len(nodes), "edges", len(edges))
	return Document{Nodes: nodes, Edges: edges}, nil
}
