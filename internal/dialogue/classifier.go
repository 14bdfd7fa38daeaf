package dialogue

import (
	"fmt"
	"strings"
	"time"
)

// IntentKind identifies what the classifier made of a turn.
type IntentKind string

const (
	IntentFreeText IntentKind = "free_text"
	IntentService  IntentKind = "service"
	IntentDate     IntentKind = "date"
	IntentTimeSlot IntentKind = "time_slot"
	IntentConfirm  IntentKind = "confirm"
	IntentDecline  IntentKind = "decline"
	IntentInvalid  IntentKind = "invalid"
)

// Intent is the logical value a user's raw text resolved to in the context
// of the active state.
type Intent struct {
	Kind  IntentKind
	Value string // canonical service name, ISO date, or slot value
	// Reason is set for IntentInvalid so the engine can pick a re-prompt.
	Reason string
}

const (
	reasonUnparseableDate = "unparseable_date"
	reasonPastDate        = "past_date"
	reasonUnknownSlot     = "unknown_slot"
	reasonEmpty           = "empty"
)

// Slot is a bookable time interval offered in the time menu.
type Slot struct {
	Index int
	Label string // e.g. "09:00 AM - 10:00 AM"
	Value string // e.g. "09:00-10:00"
	Start string
	End   string
}

// Services in menu order. Index in this slice + 1 is the menu number.
var services = []struct {
	Name     string
	Synonyms []string
}{
	{"Regular Checkup", []string{"regular checkup", "checkup", "check up", "check-up"}},
	{"Cleaning", []string{"cleaning", "clean"}},
	{"Filling", []string{"filling", "fill"}},
	{"Root Canal", []string{"root canal", "rootcanal"}},
	{"Extraction", []string{"extraction", "extract", "pull"}},
	{"Other", []string{"other", "something else"}},
}

// slots in menu order; morning block then afternoon block.
var slots = []Slot{
	{1, "09:00 AM - 10:00 AM", "09:00-10:00", "09:00", "10:00"},
	{2, "10:00 AM - 11:00 AM", "10:00-11:00", "10:00", "11:00"},
	{3, "11:00 AM - 12:00 PM", "11:00-12:00", "11:00", "12:00"},
	{4, "02:00 PM - 03:00 PM", "14:00-15:00", "14:00", "15:00"},
	{5, "03:00 PM - 04:00 PM", "15:00-16:00", "15:00", "16:00"},
	{6, "04:00 PM - 05:00 PM", "16:00-17:00", "16:00", "17:00"},
}

var confirmKeywords = []string{"yes", "confirm", "ok", "sure"}

// dateLayouts accepted for user-entered dates, tried in order.
var dateLayouts = []string{"02/01/2006", "2/1/2006", "02-01-2006", "2006-01-02"}

// Slots returns the bookable time menu.
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots)
	return out
}

// SlotByValue resolves a stored slot value back to its menu entry.
func SlotByValue(value string) (Slot, bool) {
	for _, s := range slots {
		if s.Value == value {
			return s, true
		}
	}
	return Slot{}, false
}

// ServiceNames returns the service menu in display order.
func ServiceNames() []string {
	out := make([]string, len(services))
	for i, s := range services {
		out[i] = s.Name
	}
	return out
}

// Classify resolves raw text to a logical value for the given state. It is
// a pure function: same state and text always yield the same intent.
//
// Matching is by rule priority, not input order: an exact menu digit wins
// over a synonym substring, and synonyms win over the free-text fallback.
// States that accept free text (name, service) echo unmatched input as the
// literal value; the time menu and confirmation are strict.
func Classify(state State, raw string, now time.Time) Intent {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)

	switch state {
	case StateCollectingName:
		if text == "" {
			return Intent{Kind: IntentInvalid, Reason: reasonEmpty}
		}
		return Intent{Kind: IntentFreeText, Value: text}

	case StateCollectingService:
		for i, svc := range services {
			if text == fmt.Sprintf("%d", i+1) {
				return Intent{Kind: IntentService, Value: svc.Name}
			}
		}
		for _, svc := range services {
			for _, syn := range svc.Synonyms {
				if strings.Contains(lower, syn) {
					return Intent{Kind: IntentService, Value: svc.Name}
				}
			}
		}
		if text == "" {
			return Intent{Kind: IntentInvalid, Reason: reasonEmpty}
		}
		// Open menu: unmatched text is accepted as the literal service.
		return Intent{Kind: IntentService, Value: text}

	case StateCollectingDate:
		parsed, ok := parseDate(text)
		if !ok {
			return Intent{Kind: IntentInvalid, Reason: reasonUnparseableDate}
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if parsed.Before(today) {
			return Intent{Kind: IntentInvalid, Reason: reasonPastDate}
		}
		return Intent{Kind: IntentDate, Value: parsed.Format("2006-01-02")}

	case StateCollectingTime:
		for _, slot := range slots {
			if text == fmt.Sprintf("%d", slot.Index) {
				return Intent{Kind: IntentTimeSlot, Value: slot.Value}
			}
		}
		// Strict menu: anything else re-prompts.
		return Intent{Kind: IntentInvalid, Reason: reasonUnknownSlot}

	case StateConfirmingBooking:
		for _, kw := range confirmKeywords {
			if strings.Contains(lower, kw) {
				return Intent{Kind: IntentConfirm}
			}
		}
		return Intent{Kind: IntentDecline}

	default: // Greeting accepts anything.
		return Intent{Kind: IntentFreeText, Value: text}
	}
}

func parseDate(text string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}
