package api

import "fmt"

// NetworkError is a transport failure or a non-2xx status.
type NetworkError struct {
	Endpoint string
	Status   int // 0 when no response arrived
	Err      error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("Network error: HTTP %d", e.Status)
	}
	return fmt.Sprintf("Network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means the body was not the expected envelope.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string { return fmt.Sprintf("Parse error: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// RemoteError is a well formed envelope with success=false.
type RemoteError struct {
	Endpoint string
	Message  string
}

func (e *RemoteError) Error() string { return e.Message }
