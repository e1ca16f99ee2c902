package core

import "fmt"

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error calling %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a response with a non-success status or a malformed or incomplete payload.
type APIError struct {
	URL        string
	StatusCode int
	Reason     string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 && e.Reason == "" {
		return fmt.Sprintf("api error from %s: status %d", e.URL, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("api error from %s: %s: %v", e.URL, e.Reason, e.Err)
	}
	return fmt.Sprintf("api error from %s: %s", e.URL, e.Reason)
}

func (e *APIError) Unwrap() error { return e.Err }

// CacheParseError means a stored entry could not be decoded. The entry is treated as absent.
type CacheParseError struct {
	Key string
	Err error
}

func (e *CacheParseError) Error() string {
	return fmt.Sprintf("unreadable cache entry %q: %v", e.Key, e.Err)
}

func (e *CacheParseError) Unwrap() error { return e.Err }
