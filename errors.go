package gpt

import "fmt"

// InvalidDescriptorError reports which validation rule a descriptor
// failed. It is returned before any output byte is produced.
type InvalidDescriptorError struct {
	Rule    string
	Message string
}

func (e InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid gpt descriptor: %s: %s", e.Rule, e.Message)
}

// HostUnsupportedError reports that the host is not little-endian.
// Detected once, at package initialization.
type HostUnsupportedError struct{}

func (HostUnsupportedError) Error() string {
	return "gpt: this package only supports little-endian hosts"
}
