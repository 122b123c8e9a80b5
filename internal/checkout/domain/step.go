package domain

// Step is the checkout wizard position. Forward movement is gated by
// validation of the current step's form, backward movement is always
// allowed until the order is submitted.
type Step int

const (
	StepShipping Step = iota + 1
	StepPayment
	StepReview
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepShipping:
		return "shipping"
	case StepPayment:
		return "payment"
	case StepReview:
		return "review"
	case StepSubmitted:
		return "submitted"
	default:
		return "unknown"
	}
}

func (s Step) IsTerminal() bool {
	return s == StepSubmitted
}

// CanTransitionTo allows single forward steps and any backward step
// while the checkout is still live.
func CanTransitionTo(from, to Step) bool {
	if from.IsTerminal() {
		return false
	}
	if to == from+1 {
		return true
	}
	return to >= StepShipping && to < from
}
