package explorer

// Stage is the position of a session in the page pipeline:
//
//	Idle → Loaded → Described → Selected → Filtered → Rendered | PlotWarned
//
// with Failed and NoNumeric as terminal stages. Filtered, Rendered and
// PlotWarned loop back through Filtered on every threshold change.
type Stage int

const (
	StageIdle Stage = iota
	StageLoaded
	StageDescribed
	StageSelected
	StageFiltered
	StageRendered
	StagePlotWarned
	StageNoNumeric
	StageFailed
)

var stageNames = [...]string{
	StageIdle:       "idle",
	StageLoaded:     "loaded",
	StageDescribed:  "described",
	StageSelected:   "selected",
	StageFiltered:   "filtered",
	StageRendered:   "rendered",
	StagePlotWarned: "plot_warned",
	StageNoNumeric:  "no_numeric",
	StageFailed:     "failed",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "unknown"
	}
	return stageNames[s]
}

// Terminal reports whether no further transitions are possible.
func (s Stage) Terminal() bool { return s == StageFailed || s == StageNoNumeric }

// Filterable reports whether a threshold change can be applied.
func (s Stage) Filterable() bool {
	switch s {
	case StageSelected, StageFiltered, StageRendered, StagePlotWarned:
		return true
	}
	return false
}

// MarshalText lets stages appear by name in JSON and logs.
func (s Stage) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
