package format

import (
	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// jsonDocument mirrors the node-editor export: step fields live under "data",
// extra editor fields such as "position" are ignored.
type jsonDocument struct {
	Nodes []jsonNode   `json:"nodes"`
	Edges []types.Edge `json:"edges"`
}

type jsonNode struct {
	ID   string       `json:"id"`
	Type string       `json:"type,omitempty"`
	Data jsonNodeData `json:"data"`
}

type jsonNodeData struct {
	Name                  string                `json:"name"`
	StepType              types.StepType        `json:"stepType"`
	Description           string                `json:"description,omitempty"`
	HasConditionalOutputs bool                  `json:"hasConditionalOutputs,omitempty"`
	SuccessRate           *int                  `json:"successRate,omitempty"`
	Status                types.ExecutionStatus `json:"status,omitempty"`
}

const editorNodeType = "workflowNode"

func decodeJSON(data []byte) (Document, error) {
	var raw jsonDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return Document{}, errors.Wrap(err, "invalid json")
	}

	doc := Document{Edges: raw.Edges}
	for _, n := range raw.Nodes {
		doc.Nodes = append(doc.Nodes, types.Node{
			ID:                    n.ID,
			Name:                  n.Data.Name,
			Type:                  n.Data.StepType,
			Description:           n.Data.Description,
			HasConditionalOutputs: n.Data.HasConditionalOutputs,
			SuccessRate:           n.Data.SuccessRate,
			Status:                n.Data.Status,
		})
	}
	return doc, nil
}

func encodeJSON(doc Document) ([]byte, error) {
	raw := jsonDocument{
		Nodes: make([]jsonNode, 0, len(doc.Nodes)),
		Edges: doc.Edges,
	}
	if raw.Edges == nil {
		raw.Edges = []types.Edge{}
	}
	for _, n := range doc.Nodes {
		raw.Nodes = append(raw.Nodes, jsonNode{
			ID:   n.ID,
			Type: editorNodeType,
			Data: jsonNodeData{
				Name:                  n.Name,
				StepType:              n.Type,
				Description:           n.Description,
				HasConditionalOutputs: n.HasConditionalOutputs,
				SuccessRate:           n.SuccessRate,
				Status:                n.Status,
			},
		})
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "encode json")
	}
	return data, nil
}
