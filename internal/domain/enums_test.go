package domain

import "testing"

func TestState_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  bool
	}{
		{StateNew, true},
		{StateEmpty, true},
		{StateSomeBottles, true},
		{StateReasonablyFull, true},
		{StateFull, true},
		{StateOverflow, true},
		{StateNoCrates, true},
		{State("INVALID"), false},
		{State(""), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			t.Parallel()
			if got := tt.state.IsValid(); got != tt.want {
				t.Errorf("State(%q).IsValid() = %v, want %v", tt.state, got, tt.want)
			}
		})
	}
}

func TestState_Severity_MatchesOrdering(t *testing.T) {
	t.Parallel()

	for i, s := range AllStates {
		if got := s.Severity(); got != i {
			t.Errorf("State(%q).Severity() = %d, want %d", s, got, i)
		}
	}
	if got := State("INVALID").Severity(); got != -1 {
		t.Errorf("unknown state severity = %d, want -1", got)
	}
}

func TestState_Weight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  float64
	}{
		{StateNew, 0},
		{StateEmpty, 1},
		{StateSomeBottles, 2},
		{StateReasonablyFull, 3},
		{StateFull, 4},
		{StateOverflow, 5},
		{StateNoCrates, 6},
		{State("INVALID"), 0},
	}
	for _, tt := range tests {
		if got := tt.state.Weight(); got != tt.want {
			t.Errorf("State(%q).Weight() = %v, want %v", tt.state, got, tt.want)
		}
	}
}

func TestVisitAction_IsValid(t *testing.T) {
	t.Parallel()

	valid := []VisitAction{
		VisitActionEmptied, VisitActionAddedCrates, VisitActionRemovedCrates, VisitActionNoAction,
	}
	for _, a := range valid {
		if !a.IsValid() {
			t.Errorf("VisitAction(%q).IsValid() = false, want true", a)
		}
	}
	if VisitAction("UNKNOWN").IsValid() {
		t.Error("VisitAction(UNKNOWN).IsValid() = true, want false")
	}
	if VisitAction("").IsValid() {
		t.Error("empty VisitAction should be invalid")
	}
}

func TestEventKind_IsValid(t *testing.T) {
	t.Parallel()

	valid := []EventKind{EventKindLocation, EventKindReport, EventKindVisit}
	for _, k := range valid {
		if !k.IsValid() {
			t.Errorf("EventKind(%q).IsValid() = false, want true", k)
		}
	}
	if EventKind("UNKNOWN").IsValid() {
		t.Error("EventKind(UNKNOWN).IsValid() = true, want false")
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()
	if got := StateSomeBottles.String(); got != "SOME_BOTTLES" {
		t.Errorf("got %q, want SOME_BOTTLES", got)
	}
}
