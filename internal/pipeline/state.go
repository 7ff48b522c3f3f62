package pipeline

// State is a node of the run state machine.
type State int

const (
	StateGenerate State = iota
	StateExecute
	StateEvaluate
	StateCorrect
	StateSummarize
	StateDone
)

func (s State) String() string {
	switch s {
	case StateGenerate:
		return "GENERATE"
	case StateExecute:
		return "EXECUTE"
	case StateEvaluate:
		return "EVALUATE"
	case StateCorrect:
		return "CORRECT"
	case StateSummarize:
		return "SUMMARIZE"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// RetryState is the correction budget of one run. Only the engine mutates it.
type RetryState struct {
	Attempts   int
	MaxRetries int
}

// Remaining reports whether another correction is allowed.
func (r RetryState) Remaining() bool {
	return r.Attempts < r.MaxRetries
}

// consume spends one correction. It reports false when the budget is
// already exhausted.
func (r *RetryState) consume() bool {
	if !r.Remaining() {
		return false
	}
	r.Attempts++
	return true
}

// stepOutcome is what the engine knows when leaving a state.
type stepOutcome struct {
	exec     *ExecutionResult
	verdict  *Verdict
	evaluate bool
}

// transition returns the state following s. Moving to StateCorrect spends
// one unit of retry.
func transition(s State, out stepOutcome, retry *RetryState) State {
	switch s {
	case StateGenerate, StateCorrect:
		return StateExecute

	case StateExecute:
		if out.exec != nil && out.exec.Failed() {
			if retry.consume() {
				return StateCorrect
			}
			return StateSummarize
		}
		if out.evaluate {
			return StateEvaluate
		}
		return StateSummarize

	case StateEvaluate:
		if out.verdict != nil && !out.verdict.Adequate && retry.consume() {
			return StateCorrect
		}
		return StateSummarize

	default:
		return StateDone
	}
}
