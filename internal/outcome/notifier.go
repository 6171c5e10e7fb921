package outcome

import (
	"strings"

	"github.com/avi3tal/stepflow/pkg/types"
	"github.com/pkg/errors"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/prompts"
	"github.com/tmc/langchaingo/schema"
)

var defaultTemplates = map[types.StepType]string{
	types.StepSMS:   "SMS {{.name}} : {{.description}}",
	types.StepEmail: "Email « {{.name}} » : {{.description}}",
}

// Notifier renders the message an sms or email step would deliver. Nothing is sent.
type Notifier struct {
	templates map[types.StepType]prompts.PromptTemplate
}

// NewNotifier creates a notifier with the default sms and email templates.
func NewNotifier() *Notifier {
	n := &Notifier{templates: make(map[types.StepType]prompts.PromptTemplate)}
	for stepType, tpl := range defaultTemplates {
		n.SetTemplate(stepType, tpl)
	}
	return n
}

// SetTemplate installs a Go template for a step type. Available fields are
// .id, .name and .description.
func (n *Notifier) SetTemplate(stepType types.StepType, template string) {
	n.templates[stepType] = prompts.NewPromptTemplate(template, []string{"id", "name", "description"})
}

// Compose builds the simulated message for node. ok is false for step types
// without a template.
func (n *Notifier) Compose(node types.Node) (msg llms.MessageContent, ok bool, err error) {
	tpl, ok := n.templates[node.Type]
	if !ok {
		return llms.MessageContent{}, false, nil
	}

	text, err := tpl.Format(map[string]any{
		"id":          node.ID,
		"name":        node.Name,
		"description": node.Description,
	})
	if err != nil {
		return llms.MessageContent{}, false, errors.Wrapf(err, "render %s template for node %s", node.Type, node.ID)
	}
	return llms.TextParts(schema.ChatMessageTypeAI, strings.TrimSpace(text)), true, nil
}

// Preview returns the text of the composed message, or "" when there is none.
func (n *Notifier) Preview(node types.Node) (string, error) {
	msg, ok, err := n.Compose(node)
	if err != nil || !ok {
		return "", err
	}

	var sb strings.Builder
	for _, part := range msg.Parts {
		if text, isText := part.(llms.TextContent); isText {
			sb.WriteString(text.Text)
		}
	}
	return sb.String(), nil
}
