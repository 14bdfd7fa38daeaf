package dialogue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2030, time.January, 15, 10, 30, 0, 0, time.UTC)

func TestClassifyServiceMenu(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"menu digit", "2", "Cleaning"},
		{"synonym", "cleaning", "Cleaning"},
		{"synonym uppercase", "CLEANING", "Cleaning"},
		{"synonym in sentence", "I'd like a cleaning please", "Cleaning"},
		{"checkup variants", "check-up", "Regular Checkup"},
		{"root canal", "root canal", "Root Canal"},
		{"extraction", "can you pull this tooth", "Extraction"},
		{"last menu digit", "6", "Other"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			intent := Classify(StateCollectingService, tc.input, testNow)
			require.Equal(t, IntentService, intent.Kind)
			assert.Equal(t, tc.want, intent.Value)
		})
	}
}

func TestClassifyServiceFreeTextFallback(t *testing.T) {
	intent := Classify(StateCollectingService, "wisdom tooth consult", testNow)
	require.Equal(t, IntentService, intent.Kind)
	assert.Equal(t, "wisdom tooth consult", intent.Value)
}

func TestClassifyServiceDigitBeatsSynonym(t *testing.T) {
	// "1" is both a menu digit and could appear inside longer text; the
	// bare digit must resolve by position, not by substring.
	intent := Classify(StateCollectingService, "1", testNow)
	require.Equal(t, IntentService, intent.Kind)
	assert.Equal(t, "Regular Checkup", intent.Value)
}

func TestClassifyDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"slash format", "25/12/2030", "2030-12-25"},
		{"single digits", "5/3/2031", "2031-03-05"},
		{"dash format", "25-12-2030", "2030-12-25"},
		{"iso format", "2030-12-25", "2030-12-25"},
		{"today is accepted", "15/01/2030", "2030-01-15"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			intent := Classify(StateCollectingDate, tc.input, testNow)
			require.Equal(t, IntentDate, intent.Kind)
			assert.Equal(t, tc.want, intent.Value)
		})
	}
}

func TestClassifyDateRejections(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"gibberish", "next tuesday maybe", reasonUnparseableDate},
		{"us format", "12/25/2030", reasonUnparseableDate},
		{"impossible day", "32/01/2030", reasonUnparseableDate},
		{"yesterday", "14/01/2030", reasonPastDate},
		{"years ago", "01/01/2020", reasonPastDate},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			intent := Classify(StateCollectingDate, tc.input, testNow)
			require.Equal(t, IntentInvalid, intent.Kind)
			assert.Equal(t, tc.reason, intent.Reason)
		})
	}
}

func TestClassifyTimeSlotStrict(t *testing.T) {
	intent := Classify(StateCollectingTime, "3", testNow)
	require.Equal(t, IntentTimeSlot, intent.Kind)
	assert.Equal(t, "11:00-12:00", intent.Value)

	for _, bad := range []string{"7", "0", "morning", "09:00", ""} {
		intent := Classify(StateCollectingTime, bad, testNow)
		assert.Equal(t, IntentInvalid, intent.Kind, "input %q", bad)
	}
}

func TestClassifyConfirmation(t *testing.T) {
	for _, yes := range []string{"yes", "YES", "confirm", "ok", "sure", "yes please!"} {
		intent := Classify(StateConfirmingBooking, yes, testNow)
		assert.Equal(t, IntentConfirm, intent.Kind, "input %q", yes)
	}
	for _, no := range []string{"no", "cancel", "nah", ""} {
		intent := Classify(StateConfirmingBooking, no, testNow)
		assert.Equal(t, IntentDecline, intent.Kind, "input %q", no)
	}
}

func TestClassifyNameTrimsWhitespace(t *testing.T) {
	intent := Classify(StateCollectingName, "  Jane Doe  ", testNow)
	require.Equal(t, IntentFreeText, intent.Kind)
	assert.Equal(t, "Jane Doe", intent.Value)

	empty := Classify(StateCollectingName, "   ", testNow)
	assert.Equal(t, IntentInvalid, empty.Kind)
}

func TestClassifyIsDeterministic(t *testing.T) {
	first := Classify(StateCollectingService, "cleaning", testNow)
	second := Classify(StateCollectingService, "cleaning", testNow)
	assert.Equal(t, first, second)
}
