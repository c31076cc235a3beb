package cubetac

// Outcome is the result of a mark or rotate request. Rejections are normal
// results, not errors.
type Outcome int

const (
	Accepted         Outcome = iota // The move was applied or the turn started
	RejectedBusy                    // A layer turn is in flight
	RejectedFinished                // The game already has a winner
	RejectedNotFront                // Target is not a front face
	RejectedOccupied                // Front face already marked
	RejectedInvalid                 // Arguments out of range
)

func (o Outcome) String() string {
	switch o {
	case Accepted:
		return "accepted"
	case RejectedBusy:
		return "busy"
	case RejectedFinished:
		return "finished"
	case RejectedNotFront:
		return "not_front"
	case RejectedOccupied:
		return "occupied"
	case RejectedInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// OK reports whether the request was accepted.
func (o Outcome) OK() bool {
	return o == Accepted
}

// MarshalText encodes the outcome as its name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}
