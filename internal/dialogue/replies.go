package dialogue

import (
	"fmt"
	"strings"
	"time"
)

// Replies renders the prompt for each step. The practice name is the only
// variable piece of copy.
type Replies struct {
	PracticeName string
}

func (r Replies) practice() string {
	if r.PracticeName != "" {
		return r.PracticeName
	}
	return "Dental Care Bot"
}

func (r Replies) Welcome() string {
	return fmt.Sprintf("Welcome to %s!\n\nI can help you book a dental appointment.\n\nPlease tell me your name:", r.practice())
}

func (r Replies) NamePrompt() string {
	return "Please tell me your name:"
}

func (r Replies) ServiceMenu(name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nice to meet you, %s!\n\nWhat type of dental service do you need?\n", name)
	for i, svc := range ServiceNames() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, svc)
	}
	b.WriteString("\nPlease reply with the number or service name:")
	return b.String()
}

func (r Replies) ServiceReprompt() string {
	return "Please reply with the number or service name:"
}

func (r Replies) DatePrompt(service string) string {
	return fmt.Sprintf("Great! You've selected: %s\n\nWhen would you like to book your appointment?\nPlease enter the date (DD/MM/YYYY format):", service)
}

func (r Replies) InvalidDate() string {
	return "Please enter a valid date in DD/MM/YYYY format (e.g., 25/12/2030):"
}

func (r Replies) PastDate(now time.Time) string {
	return fmt.Sprintf("Please select a future date. Today is %s. Enter a valid date:", now.Format("02/01/2006"))
}

func (r Replies) TimeMenu(date string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Perfect! Date: %s\n\nAvailable time slots:\n", displayDate(date))
	for _, slot := range Slots() {
		fmt.Fprintf(&b, "%d. %s\n", slot.Index, slot.Label)
	}
	b.WriteString("\nPlease select a time slot (1-6):")
	return b.String()
}

func (r Replies) InvalidSlot() string {
	return "Please select a valid time slot (1-6):"
}

func (r Replies) Summary(draft BookingDraft) string {
	return fmt.Sprintf("Appointment Summary:\n\nService: %s\nDate: %s\nTime: %s\n\nPlease confirm your booking by typing \"YES\" or \"CONFIRM\":",
		draft.Service, displayDate(draft.Date), draft.Time)
}

func (r Replies) Confirmed(draft BookingDraft) string {
	return fmt.Sprintf("Appointment confirmed!\n\nYour appointment details:\nService: %s\nDate: %s\nTime: %s\n\nWe'll send you a reminder 24 hours before your appointment.\n\nThank you for choosing %s!\n\nTo book another appointment, just send \"hello\" or \"book appointment\".",
		draft.Service, displayDate(draft.Date), draft.Time, r.practice())
}

func (r Replies) Declined() string {
	return "Appointment cancelled.\n\nTo book a new appointment, send \"hello\" or \"book appointment\"."
}

func (r Replies) SlotTaken() string {
	return "Sorry, that time slot was just taken. Please pick another slot (1-6):"
}

func (r Replies) Restart() string {
	return "Something went wrong with your booking. Let's start over - send \"hello\" to book an appointment."
}

// displayDate renders an ISO date as DD/MM/YYYY for user-facing copy.
func displayDate(iso string) string {
	parsed, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return parsed.Format("02/01/2006")
}
