package modelgateway

import "fmt"

// RequestError reports a failed completion request. Err is the SDK or API
// error exactly as returned.
type RequestError struct {
	ResponseID string
	Err        error
}

func (e *RequestError) Error() string {
	if e.ResponseID != "" {
		return fmt.Sprintf("model request %s failed: %v", e.ResponseID, e.Err)
	}
	return fmt.Sprintf("model request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }
