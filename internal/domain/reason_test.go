package domain

import "testing"

func TestTagReason(t *testing.T) {
	if got := TagReason("sandwich_bot"); got != ReasonCode("TAG_sandwich_bot") {
		t.Errorf("TagReason(sandwich_bot) = %q", got)
	}
}

func TestReasonCodeIsValid(t *testing.T) {
	tests := []struct {
		reason   ReasonCode
		expected bool
	}{
		{ReasonPass, true},
		{ReasonJSONFail, true},
		{ReasonPnL30Low, true},
		{ReasonROILow, true},
		{ReasonError, true},
		{TagReason("sandwich_bot"), true},
		{ReasonCode("TAG_"), false},
		{ReasonCode("MAYBE"), false},
		{ReasonCode(""), false},
	}

	for _, tt := range tests {
		if got := tt.reason.IsValid(); got != tt.expected {
			t.Errorf("IsValid(%q) = %v, want %v", tt.reason, got, tt.expected)
		}
	}
}

func TestReasonCodeIsTag(t *testing.T) {
	if !TagReason("bundler").IsTag() {
		t.Error("expected tag reason to report IsTag")
	}
	if ReasonPass.IsTag() {
		t.Error("PASS must not report IsTag")
	}
}
