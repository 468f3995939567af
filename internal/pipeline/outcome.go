package pipeline

// State is the orchestrator's position in the per-file state machine.
type State int

const (
	StatePlanned State = iota
	StatePass1Running
	StatePass1Done
	StatePass1Failed
	StatePass2Running
	StatePass2Done
	StatePass2Failed
	StateVerifying
	StateVerified
	StateVerifyFailed
	StateDisposing
	StateComplete
	StateDisposeFailed
)

func (s State) String() string {
	switch s {
	case StatePlanned:
		return "planned"
	case StatePass1Running:
		return "pass1-running"
	case StatePass1Done:
		return "pass1-done"
	case StatePass1Failed:
		return "pass1-failed"
	case StatePass2Running:
		return "pass2-running"
	case StatePass2Done:
		return "pass2-done"
	case StatePass2Failed:
		return "pass2-failed"
	case StateVerifying:
		return "verifying"
	case StateVerified:
		return "verified"
	case StateVerifyFailed:
		return "verify-failed"
	case StateDisposing:
		return "disposing"
	case StateComplete:
		return "complete"
	case StateDisposeFailed:
		return "dispose-failed"
	default:
		return "unknown"
	}
}

// Stage names the pipeline step at which a file was skipped or failed.
type Stage string

const (
	StageScan    Stage = "scan"
	StageProbe   Stage = "probe"
	StageBudget  Stage = "budget"
	StagePass1   Stage = "pass1"
	StagePass2   Stage = "pass2"
	StageVerify  Stage = "verify"
	StageDispose Stage = "dispose"
)

// OutcomeKind classifies the result of processing one file.
type OutcomeKind int

const (
	OutcomeSkipped OutcomeKind = iota
	OutcomeConverted
	OutcomeFailed
)

// Outcome is the per-file result consumed by the batch driver. One
// EncodeJob produces exactly one Outcome.
type Outcome struct {
	Kind   OutcomeKind
	Stage  Stage  // set for Skipped and Failed
	Reason string // human-readable explanation for every skip/failure
}

func skipped(stage Stage, reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Stage: stage, Reason: reason}
}

func failed(stage Stage, reason string) Outcome {
	return Outcome{Kind: OutcomeFailed, Stage: stage, Reason: reason}
}
