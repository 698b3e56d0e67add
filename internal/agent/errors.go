package agent

import (
	"errors"
	"fmt"
)

// Sentinel validation kinds. ValidationError wraps exactly one of these so
// callers can branch with errors.Is without parsing messages.
var (
	ErrInvalidName         = errors.New("invalid-name")
	ErrInvalidPriority     = errors.New("invalid-priority")
	ErrInvalidTags         = errors.New("invalid-tags")
	ErrInvalidDependencies = errors.New("invalid-dependencies")
	ErrNameMismatch        = errors.New("name-mismatch")
	ErrNilFactory          = errors.New("factory-not-callable")
)

// ValidationError reports a malformed Metadata or Definition at construction
// time. It is fatal to that one registration, never to the process.
type ValidationError struct {
	Kind   error
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Kind, e.Detail)
}

// Unwrap exposes the sentinel kind to errors.Is.
func (e *ValidationError) Unwrap() error { return e.Kind }

func validationErr(kind error, format string, args ...any) error {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// PathNotFoundError is raised synchronously when a caller hands the manager
// a discovery path that does not exist on the filesystem.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	return fmt.Sprintf("discovery path does not exist: %s", e.Path)
}

// InstantiationError wraps a factory failure so callers never see a raw,
// unannotated error from inside a factory. For the bulk case Name is empty
// and Err aggregates one wrapped failure per agent.
type InstantiationError struct {
	Name string
	Err  error
}

func (e *InstantiationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("failed to create agents: %s", e.Err)
	}
	return fmt.Sprintf("failed to create agent %q: %s", e.Name, e.Err)
}

func (e *InstantiationError) Unwrap() error { return e.Err }
