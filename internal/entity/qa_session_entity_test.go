package entity

import "testing"

func TestSessionStatusTransitions(t *testing.T) {
	tests := []struct {
		from SessionStatus
		to   SessionStatus
		want bool
	}{
		{SessionStatusPending, SessionStatusProcessing, true},
		{SessionStatusPending, SessionStatusCompleted, false},
		{SessionStatusPending, SessionStatusFailed, false},
		{SessionStatusProcessing, SessionStatusCompleted, true},
		{SessionStatusProcessing, SessionStatusFailed, true},
		{SessionStatusProcessing, SessionStatusPending, false},
		{SessionStatusCompleted, SessionStatusProcessing, false},
		{SessionStatusCompleted, SessionStatusFailed, false},
		{SessionStatusFailed, SessionStatusProcessing, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSessionStatusTerminal(t *testing.T) {
	if SessionStatusPending.Terminal() || SessionStatusProcessing.Terminal() {
		t.Error("pending and processing are not terminal")
	}
	if !SessionStatusCompleted.Terminal() || !SessionStatusFailed.Terminal() {
		t.Error("completed and failed are terminal")
	}
}
