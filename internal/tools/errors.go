package tools

import "fmt"

// InvalidArgumentsError reports a tool invocation whose arguments violate
// the tool's declared schema. Raised before any side effect runs.
type InvalidArgumentsError struct {
	Tool    string
	Field   string
	Message string
}

func (e *InvalidArgumentsError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tool %s: invalid arguments: %s", e.Tool, e.Message)
	}
	return fmt.Sprintf("tool %s: invalid argument %q: %s", e.Tool, e.Field, e.Message)
}

// ArgumentParseError reports tool arguments that are not valid JSON.
type ArgumentParseError struct {
	Tool string
	Err  error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("tool %s: arguments are not valid JSON: %v", e.Tool, e.Err)
}

func (e *ArgumentParseError) Unwrap() error { return e.Err }

// UnknownToolError reports a dispatch to a tool name outside the fixed set.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}
