package dialogue

import "encoding/json"

// State is a step of the booking conversation. The machine is strictly
// forward except for the confirmation branch, which loops back to Greeting
// so users can book again.
type State string

const (
	StateGreeting          State = "greeting"
	StateCollectingName    State = "collecting_name"
	StateCollectingService State = "collecting_service"
	StateCollectingDate    State = "collecting_date"
	StateCollectingTime    State = "collecting_time"
	StateConfirmingBooking State = "confirming_booking"
)

// ParseState maps a stored tag to a State, defaulting to Greeting for
// anything unknown so a corrupted row can never strand a user.
func ParseState(tag string) State {
	switch State(tag) {
	case StateCollectingName, StateCollectingService, StateCollectingDate,
		StateCollectingTime, StateConfirmingBooking:
		return State(tag)
	default:
		return StateGreeting
	}
}

// BookingDraft accumulates the partial answers collected across turns for
// one in-progress booking. Zero values mean "not collected yet".
type BookingDraft struct {
	Service string `json:"service,omitempty"`
	Date    string `json:"date,omitempty"` // ISO 8601, YYYY-MM-DD
	Time    string `json:"time,omitempty"` // slot value, HH:MM-HH:MM
}

// Complete reports whether every field required to commit is present.
func (d BookingDraft) Complete() bool {
	return d.Service != "" && d.Date != "" && d.Time != ""
}

// Encode serializes the draft as the flat context blob stored alongside the
// state tag.
func (d BookingDraft) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// DecodeDraft parses a context blob. Empty or nil input yields an empty
// draft; unknown keys are ignored.
func DecodeDraft(raw []byte) (BookingDraft, error) {
	var draft BookingDraft
	if len(raw) == 0 {
		return draft, nil
	}
	if err := json.Unmarshal(raw, &draft); err != nil {
		return BookingDraft{}, err
	}
	return draft, nil
}
