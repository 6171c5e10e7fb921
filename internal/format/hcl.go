package format

import (
	"fmt"

	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/pkg/errors"
)

// hclRoot decodes the top-level blocks of a workflow file:
//
//	step "email-1" {
//	  type        = "email"
//	  name        = "Relance"
//	  conditional = true
//	}
//
//	edge {
//	  from   = "email-1"
//	  to     = "end-1"
//	  handle = "failure"
//	}
type hclRoot struct {
	Steps []*hclStep `hcl:"step,block"`
	Edges []*hclEdge `hcl:"edge,block"`
}

type hclStep struct {
	ID          string  `hcl:"id,label"`
	Type        string  `hcl:"type"`
	Name        *string `hcl:"name,optional"`
	Description *string `hcl:"description,optional"`
	Conditional *bool   `hcl:"conditional,optional"`
	SuccessRate *int    `hcl:"success_rate,optional"`
}

type hclEdge struct {
	ID     *string `hcl:"id,optional"`
	From   string  `hcl:"from"`
	To     string  `hcl:"to"`
	Handle *string `hcl:"handle,optional"`
}

func decodeHCL(data []byte, filename string) (Document, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, filename)
	if diags.HasErrors() {
		return Document{}, errors.Wrap(diags, "invalid hcl")
	}

	var root hclRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return Document{}, errors.Wrap(diags, "invalid workflow blocks")
	}

	var doc Document
	for _, s := range root.Steps {
		n := types.Node{
			ID:          s.ID,
			Type:        types.StepType(s.Type),
			Name:        deref(s.Name),
			Description: deref(s.Description),
			SuccessRate: s.SuccessRate,
		}
		if s.Conditional != nil {
			n.HasConditionalOutputs = *s.Conditional
		}
		doc.Nodes = append(doc.Nodes, n)
	}
	for _, e := range root.Edges {
		edge := types.Edge{
			ID:           deref(e.ID),
			Source:       e.From,
			Target:       e.To,
			SourceHandle: types.Handle(deref(e.Handle)).Normalize(),
		}
		if edge.ID == "" {
			edge.ID = fmt.Sprintf("%s-%s-%s", edge.Source, edge.Target, edge.SourceHandle)
		}
		doc.Edges = append(doc.Edges, edge)
	}
	return doc, nil
}

func encodeHCL(doc Document) []byte {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, n := range doc.Nodes {
		if i > 0 {
			body.AppendNewline()
		}
		s := &hclStep{
			ID:          n.ID,
			Type:        string(n.Type),
			Name:        ref(n.Name),
			Description: ref(n.Description),
			SuccessRate: n.SuccessRate,
		}
		if n.HasConditionalOutputs {
			s.Conditional = &n.HasConditionalOutputs
		}
		body.AppendBlock(gohcl.EncodeAsBlock(s, "step"))
	}
	for _, e := range doc.Edges {
		body.AppendNewline()
		body.AppendBlock(gohcl.EncodeAsBlock(&hclEdge{
			ID:     ref(e.ID),
			From:   e.Source,
			To:     e.Target,
			Handle: ref(string(e.SourceHandle.Normalize())),
		}, "edge"))
	}
	return f.Bytes()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
