package models

import "testing"

func TestTransitions(t *testing.T) {
	cases := []struct {
		from, to ExtractionStatus
		want     bool
	}{
		{StatusNotStarted, StatusRunning, true},
		{StatusRunning, StatusRunning, true},
		{StatusRunning, StatusDone, true},
		{StatusRunning, StatusFailed, true},
		{StatusNotStarted, StatusDone, false},
		{StatusNotStarted, StatusFailed, false},
		{StatusDone, StatusRunning, false},
		{StatusFailed, StatusRunning, false},
		{StatusDone, StatusFailed, false},
		{StatusFailed, StatusDone, false},
		{StatusDone, StatusNotStarted, false},
		{StatusRunning, StatusNotStarted, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestEveryEdgeMovesForward(t *testing.T) {
	all := []ExtractionStatus{StatusNotStarted, StatusRunning, StatusDone, StatusFailed}
	for _, from := range all {
		for _, to := range all {
			if from.CanTransitionTo(to) && !to.NotBefore(from) {
				t.Errorf("edge %s -> %s moves backwards", from, to)
			}
		}
	}
}

func TestTerminal(t *testing.T) {
	if StatusNotStarted.Terminal() || StatusRunning.Terminal() {
		t.Fatalf("non-terminal state reported terminal")
	}
	if !StatusDone.Terminal() || !StatusFailed.Terminal() {
		t.Fatalf("terminal state reported non-terminal")
	}
	if ExtractionStatus("CONCLUIDA").Valid() {
		t.Fatalf("unknown status reported valid")
	}
}

func TestCaseCode(t *testing.T) {
	if got := CaseCode("ARE", 123456); got != "ARE123456" {
		t.Fatalf("CaseCode = %q", got)
	}
}
