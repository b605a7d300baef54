package progress

type StepState string

const (
	StepComplete StepState = "complete"
	StepCurrent  StepState = "current"
	StepUpcoming StepState = "upcoming"
)

type Step struct {
	Index int       `json:"index"`
	Label string    `json:"label"`
	State StepState `json:"state"`
}

type Timeline struct {
	Stage    int    `json:"stage"`
	Label    string `json:"label"`
	Terminal bool   `json:"terminal"`
	Steps    []Step `json:"steps"`
}

// BuildTimeline lays out the labels around stage. The stage is clamped into
// the label list. When the list is long enough to carry the rejected label,
// that label is kept off the linear path and a rejected stage renders as a
// single terminal step.
func BuildTimeline(labels []string, stage int) Timeline {
	if len(labels) == 0 {
		return Timeline{Stage: NoCatalog, Steps: []Step{}}
	}
	stage = clamp(stage, 0, len(labels)-1)

	hasTerminal := len(labels) > StageRejected
	if hasTerminal && stage == StageRejected {
		return Timeline{
			Stage:    stage,
			Label:    labels[stage],
			Terminal: true,
			Steps:    []Step{{Index: stage, Label: labels[stage], State: StepCurrent}},
		}
	}

	steps := make([]Step, 0, len(labels))
	for i, label := range labels {
		if hasTerminal && i == StageRejected {
			continue
		}
		state := StepUpcoming
		switch {
		case i < stage:
			state = StepComplete
		case i == stage:
			state = StepCurrent
		}
		steps = append(steps, Step{Index: i, Label: label, State: state})
	}
	return Timeline{Stage: stage, Label: labels[stage], Steps: steps}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
