package services

import "testing"

func TestCheckEligible(t *testing.T) {
	opCtx := testContext()

	tests := []struct {
		name      string
		requester string
		target    Target
		want      Reason
	}{
		{"regular member", "I1", Target{UserID: "U1"}, ReasonNone},
		{"bot", "I1", Target{UserID: "B1", Bot: true}, ReasonBot},
		{"self", "I1", Target{UserID: "I1"}, ReasonSelf},
		{"interviewer", "I1", Target{UserID: "I2", Roles: []string{"300"}}, ReasonInterviewer},
		// first match wins
		{"bot requesting itself", "B1", Target{UserID: "B1", Bot: true}, ReasonBot},
		{"interviewer requesting self", "I1", Target{UserID: "I1", Roles: []string{"300"}}, ReasonSelf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckEligible(tt.requester, tt.target, opCtx)
			if got.Reason != tt.want {
				t.Errorf("Expected reason %q, got %q", tt.want, got.Reason)
			}
			if got.Eligible != (tt.want == ReasonNone) {
				t.Errorf("Expected eligible=%v, got %v", tt.want == ReasonNone, got.Eligible)
			}
		})
	}
}
