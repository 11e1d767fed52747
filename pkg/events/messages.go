package events

// Step identifies one stage of a launch.
type Step string

const (
	StepEnvironment Step = "environment"
	StepBackend     Step = "backend"
	StepFrontend    Step = "frontend"
	StepGrace       Step = "grace"
	StepReadiness   Step = "readiness"
	StepNavigate    Step = "navigate"
)

// Steps lists every step in launch order.
var Steps = []Step{
	StepEnvironment,
	StepBackend,
	StepFrontend,
	StepGrace,
	StepReadiness,
	StepNavigate,
}

// StepState is the progress of a single step.
type StepState int

const (
	StatePending StepState = iota
	StateRunning
	StateDone
	StateFailed
	StateSkipped
)

func (s StepState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	case StateSkipped:
		return "skipped"
	default:
		return "pending"
	}
}

// StepMsg is sent when a launch step changes state
type StepMsg struct {
	Step  Step
	State StepState
	Err   error
}

// NavigateMsg replaces the location shown by the UI surface
type NavigateMsg struct {
	URL string
}

// ChildExitedMsg is sent when a spawned child process exits
type ChildExitedMsg struct {
	Name     string
	ExitCode int
	Err      error
}

// LaunchDoneMsg is sent once the launch has finished, successfully or not
type LaunchDoneMsg struct {
	Err error
}
