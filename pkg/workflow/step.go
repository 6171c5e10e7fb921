package workflow

import "github.com/avi3tal/stepflow/pkg/types"

// Start returns a start step.
func Start(id, name string) types.Node {
	return types.Node{ID: id, Name: name, Type: types.StepStart}
}

// SMS returns an sms step; description is the message body.
func SMS(id, name, description string) types.Node {
	return types.Node{ID: id, Name: name, Type: types.StepSMS, Description: description}
}

// Email returns an email step; description is the message body.
func Email(id, name, description string) types.Node {
	return types.Node{ID: id, Name: name, Type: types.StepEmail, Description: description}
}

// Custom returns a custom step that succeeds successRate percent of the time.
func Custom(id, name string, successRate int) types.Node {
	return types.Node{ID: id, Name: name, Type: types.StepCustom, SuccessRate: &successRate}
}

// End returns an end step.
func End(id, name string) types.Node {
	return types.Node{ID: id, Name: name, Type: types.StepEnd}
}
