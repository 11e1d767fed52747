package launcher

import (
	"fmt"
)

// Kind classifies why a launch was aborted.
type Kind string

const (
	KindBackendSpawnFailed  Kind = "BackendSpawnFailed"
	KindFrontendSpawnFailed Kind = "FrontendSpawnFailed"
	KindReadinessTimeout    Kind = "ReadinessTimeout"
	KindNavigationFailed    Kind = "NavigationFailed"
)

func (k Kind) describe() string {
	switch k {
	case KindBackendSpawnFailed:
		return "failed to start backend"
	case KindFrontendSpawnFailed:
		return "failed to start frontend"
	case KindReadinessTimeout:
		return "frontend never became ready"
	case KindNavigationFailed:
		return "failed to navigate ui surface"
	default:
		return string(k)
	}
}

// Reference errors for errors.Is; they match any LaunchError of the same kind.
var (
	ErrBackendSpawnFailed  error = &LaunchError{Kind: KindBackendSpawnFailed}
	ErrFrontendSpawnFailed error = &LaunchError{Kind: KindFrontendSpawnFailed}
	ErrReadinessTimeout    error = &LaunchError{Kind: KindReadinessTimeout}
	ErrNavigationFailed    error = &LaunchError{Kind: KindNavigationFailed}
)

// LaunchError aborts a launch. Err is the underlying OS or UI error.
type LaunchError struct {
	Kind Kind
	Err  error
}

func (e *LaunchError) Error() string {
	if e.Err == nil {
		return e.Kind.describe()
	}
	return fmt.Sprintf("%s: %v", e.Kind.describe(), e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

func (e *LaunchError) Is(target error) bool {
	t, ok := target.(*LaunchError)
	return ok && t.Err == nil && t.Kind == e.Kind
}
