package delivery

import "fmt"

// Status is the delivery state shared by the delivery row and its order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusInTransit  Status = "in_transit"
	StatusDelivered  Status = "delivered"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusInTransit, StatusFailed, StatusCancelled},
	StatusProcessing: {StatusInTransit, StatusDelivered, StatusFailed, StatusCancelled},
	StatusInTransit:  {StatusDelivered, StatusFailed, StatusCancelled},
	// failed -> pending is the redispatch path
	StatusFailed:    {StatusPending, StatusCancelled},
	StatusDelivered: nil,
	StatusCancelled: nil,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition (including cancellation) is allowed.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseStatus rejects anything outside the closed set.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown delivery status %q", s)
	}
	return st, nil
}
