package types

// StepType is the closed set of step kinds a workflow node can have
type StepType string

const (
	StepStart  StepType = "start"
	StepSMS    StepType = "sms"
	StepEmail  StepType = "email"
	StepCustom StepType = "custom"
	StepEnd    StepType = "end"
)

// StepTypes lists every known step type in display order.
var StepTypes = []StepType{StepStart, StepSMS, StepEmail, StepCustom, StepEnd}

// Valid reports whether t is one of the known step types.
func (t StepType) Valid() bool {
	for _, known := range StepTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Icon returns the glyph used when printing a node.
func (t StepType) Icon() string {
	switch t {
	case StepStart:
		return "▶️"
	case StepSMS:
		return "📱"
	case StepEmail:
		return "📧"
	case StepCustom:
		return "⚙️"
	case StepEnd:
		return "🏁"
	default:
		return "❓"
	}
}
