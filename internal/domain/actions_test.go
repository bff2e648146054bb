package domain

import "testing"

func TestParseMessage(t *testing.T) {
	tests := []struct {
		input    string
		expected MessageType
	}{
		{"answer", MessageAnswer},
		{"ANSWER", MessageAnswer},
		{" Use_Ability ", MessageUseAbility},
		{"host_solo", MessageHostSolo},
		{"toggle_charge", MessageToggleCharge},
		{"teleport", MessageUnknown},
		{"", MessageUnknown},
	}

	for _, tt := range tests {
		result := ParseMessage(tt.input)
		if result != tt.expected {
			t.Errorf("ParseMessage(%q) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestMessageType_String(t *testing.T) {
	tests := []struct {
		msg      MessageType
		expected string
	}{
		{MessageJoin, "join"},
		{MessageDeclineHealing, "decline_healing"},
		{MessageUnknown, "unknown"},
	}

	for _, tt := range tests {
		if got := tt.msg.String(); got != tt.expected {
			t.Errorf("MessageType(%d).String() = %q, want %q", tt.msg, got, tt.expected)
		}
	}
}

func TestMessageType_AllowedIn(t *testing.T) {
	if MessageAnswer.AllowedIn() != PhaseQuestion {
		t.Errorf("answer should only be accepted during question")
	}
	if MessageBlock.AllowedIn() != PhaseAbilities {
		t.Errorf("block should only be accepted during abilities")
	}
	if MessageEndFight.AllowedIn() != "" {
		t.Errorf("end_fight should be accepted in any phase")
	}
	if !MessageJoin.IsRegistry() || MessageAnswer.IsRegistry() {
		t.Errorf("IsRegistry mismatch")
	}
}
