package domain

import (
	"errors"
	"testing"
)

func TestSubmissionStateConstructors(t *testing.T) {
	groups := []ObjectMatchGroup{{Object: "chair", Confidence: 0.9}}

	tests := []struct {
		name        string
		state       SubmissionState
		wantStatus  Status
		wantResults bool
		wantError   string
	}{
		{"idle", Idle(), StatusIdle, false, ""},
		{"loading", Loading("u"), StatusLoading, false, ""},
		{"succeeded", Succeeded("u", groups), StatusSuccess, true, ""},
		{"succeeded with nil results", Succeeded("u", nil), StatusSuccess, true, ""},
		{"failed", Failed("u", "Invalid URL"), StatusFailed, false, "Invalid URL"},
		{"failed without message", Failed("u", ""), StatusFailed, false, DefaultFailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.Status(); got != tt.wantStatus {
				t.Errorf("Status() = %v, want %v", got, tt.wantStatus)
			}
			if got := tt.state.Results() != nil; got != tt.wantResults {
				t.Errorf("Results() present = %v, want %v", got, tt.wantResults)
			}
			if got := tt.state.Error(); got != tt.wantError {
				t.Errorf("Error() = %q, want %q", got, tt.wantError)
			}
			if tt.state.Results() != nil && tt.state.Error() != "" {
				t.Error("results and error are both set")
			}
		})
	}
}

func TestResolve(t *testing.T) {
	ok := Resolve("u", OutcomeSuccess([]ObjectMatchGroup{{Object: "lamp"}}))
	if ok.Status() != StatusSuccess || len(ok.Results()) != 1 || ok.URL() != "u" {
		t.Errorf("Resolve(success) = %+v", ok)
	}

	failed := Resolve("u", OutcomeFailure("nope", ErrProtocol))
	if failed.Status() != StatusFailed || failed.Error() != "nope" || failed.Results() != nil {
		t.Errorf("Resolve(failure) = %+v", failed)
	}
}

func TestOutcome(t *testing.T) {
	success := OutcomeSuccess(nil)
	if !success.Succeeded() || success.Groups() == nil || success.Message() != "" || success.Err() != nil {
		t.Errorf("OutcomeSuccess(nil) = %+v", success)
	}

	failure := OutcomeFailure("", ErrTransport)
	if failure.Succeeded() || failure.Message() != DefaultFailureMessage || !errors.Is(failure.Err(), ErrTransport) {
		t.Errorf("OutcomeFailure(\"\") = %+v", failure)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		status   Status
		name     string
		terminal bool
	}{
		{StatusIdle, "idle", false},
		{StatusLoading, "loading", false},
		{StatusSuccess, "success", true},
		{StatusFailed, "failed", true},
		{Status(42), "unknown", false},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.name {
			t.Errorf("String() = %q, want %q", got, tt.name)
		}
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v, want %v", tt.name, got, tt.terminal)
		}
	}
}
