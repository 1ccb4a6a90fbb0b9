package round

import "fmt"

// Phase represents the stages a round moves through, in order.
type Phase int

const (
	PhaseNarration Phase = iota
	PhaseActionDeclaration
	PhaseJudgement
	PhaseUpdate
)

var phaseNames = map[Phase]string{
	PhaseNarration:         "NARRATION",
	PhaseActionDeclaration: "ACTION_DECLARATION",
	PhaseJudgement:         "JUDGEMENT",
	PhaseUpdate:            "UPDATE",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// phaseSequence is the fixed order a round executes in. Phases never run
// concurrently with each other; concurrency only happens inside a phase.
var phaseSequence = []Phase{
	PhaseNarration,
	PhaseActionDeclaration,
	PhaseJudgement,
	PhaseUpdate,
}
