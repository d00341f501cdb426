package pipeline

// Stage identifies where the pipeline currently is. Transitions are forward
// only; there are no retries or backward edges at this level.
type Stage int

const (
	StageFetching Stage = iota
	StageCleaning
	StageGenerating
	StageAnswering
	StageExporting
)

func (s Stage) String() string {
	switch s {
	case StageFetching:
		return "fetching"
	case StageCleaning:
		return "cleaning"
	case StageGenerating:
		return "generating questions"
	case StageAnswering:
		return "answering"
	case StageExporting:
		return "exporting"
	default:
		return "unknown"
	}
}

// ProgressFunc receives stage transitions. During the answering loop,
// current counts from 1 to total; other stages report (0, 1).
type ProgressFunc func(stage Stage, current, total int)

// Reporter receives user-facing stage messages at the moment a stage
// succeeds, degrades, or fails. The CLI prints these inline.
type Reporter interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

// NopReporter discards all messages.
type NopReporter struct{}

func (NopReporter) Info(string)  {}
func (NopReporter) Warn(string)  {}
func (NopReporter) Error(string) {}
