package agent

import (
	"errors"
	"fmt"
)

// ErrMaxToolRounds is returned when the model keeps requesting tools past the configured limit.
var ErrMaxToolRounds = errors.New("max tool rounds reached before the model produced a final response")

// ArgumentParseError reports tool-call arguments that are not a JSON object.
type ArgumentParseError struct {
	Tool      string
	CallID    string
	Arguments string
	Err       error
}

func (e *ArgumentParseError) Error() string {
	return fmt.Sprintf("parse arguments for tool %s (call %s): %v", e.Tool, e.CallID, e.Err)
}

func (e *ArgumentParseError) Unwrap() error { return e.Err }
