package game

import "fmt"

// Phase is the controller state.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseTutorial
	PhaseReady
	PhaseIntro
	PhaseMeasuring
	PhaseFeedback
	PhaseVictory
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseTutorial:
		return "tutorial"
	case PhaseReady:
		return "ready"
	case PhaseIntro:
		return "intro"
	case PhaseMeasuring:
		return "measuring"
	case PhaseFeedback:
		return "feedback"
	case PhaseVictory:
		return "victory"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

func (p Phase) prompt() string {
	switch p {
	case PhaseStart:
		return msgPromptStart
	case PhaseTutorial:
		return msgPromptTutorial
	case PhaseReady:
		return msgPromptReady
	case PhaseIntro:
		return msgPromptIntro
	case PhaseMeasuring:
		return msgPromptMeasuring
	case PhaseVictory:
		return msgPromptVictory
	default:
		return ""
	}
}
