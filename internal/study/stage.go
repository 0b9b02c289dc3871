package study

// Stage is one of the three learning phases an item passes through.
type Stage int

const (
	StageRecognition   Stage = iota // Word, sentence and translations visible
	StageUnderstanding                // Word visible, hints revealed on failure
	StageMastery                      // Meaning only, word revealed on demand
)

// Stages lists every stage in the order a session visits them.
var Stages = [...]Stage{StageRecognition, StageUnderstanding, StageMastery}

// String returns the stage name used in logs and telemetry.
func (s Stage) String() string {
	switch s {
	case StageRecognition:
		return "recognition"
	case StageUnderstanding:
		return "understanding"
	case StageMastery:
		return "mastery"
	}
	return "unknown"
}

// showsWord is true for the two early stages.
func (s Stage) showsWord() bool {
	return s == StageRecognition || s == StageUnderstanding
}
