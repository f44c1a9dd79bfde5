package txflow

// Step is where a transaction hook is in its approve then execute cycle.
type Step int

const (
	StepIdle Step = iota
	StepApproving
	StepExecuting
	StepSuccess
	StepError
)

func (s Step) String() string {
	switch s {
	case StepIdle:
		return "idle"
	case StepApproving:
		return "approving"
	case StepExecuting:
		return "executing"
	case StepSuccess:
		return "success"
	case StepError:
		return "error"
	}
	return "unknown"
}

// Pending is true while a tx of the hook is in flight.
func (s Step) Pending() bool {
	return s == StepApproving || s == StepExecuting
}

func (s Step) Terminal() bool {
	return s == StepSuccess || s == StepError
}

// State is the hook state. Only the error step carries a message and the
// step that failed.
type State struct {
	step     Step
	message  string
	failedAt Step
}

func Idle() State      { return State{step: StepIdle} }
func Approving() State { return State{step: StepApproving} }
func Executing() State { return State{step: StepExecuting} }
func Success() State   { return State{step: StepSuccess} }

// Failed is the error state reached while at step.
func Failed(at Step, message string) State {
	return State{step: StepError, message: message, failedAt: at}
}

func (s State) Step() Step {
	return s.step
}

// Message returns the error message, ok is false outside the error step.
func (s State) Message() (msg string, ok bool) {
	return s.message, s.step == StepError
}

// FailedAt is the step that failed, StepIdle outside the error step.
func (s State) FailedAt() Step {
	if s.step != StepError {
		return StepIdle
	}
	return s.failedAt
}

func (s State) String() string {
	if s.step == StepError {
		return "error(" + s.message + ")"
	}
	return s.step.String()
}
