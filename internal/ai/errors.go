package ai

import "fmt"

// ProviderError wraps a failed embedding or generation call. Callers
// must not retry silently; retry policy belongs to the caller.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
