package domain

// Status is the lifecycle stage of a submission
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is Success or Failed
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// SubmissionState is the state of one session's current submission.
// The constructors below are the only way to build a non-idle state, so
// results and error are never set together.
type SubmissionState struct {
	status  Status
	url     string
	results []ObjectMatchGroup
	err     string
}

// Idle returns the initial state
func Idle() SubmissionState {
	return SubmissionState{status: StatusIdle}
}

// Loading returns the state of a submission waiting on the analysis service.
// Any previous results or error are dropped.
func Loading(url string) SubmissionState {
	return SubmissionState{status: StatusLoading, url: url}
}

// Succeeded returns the terminal state for a successful submission
func Succeeded(url string, results []ObjectMatchGroup) SubmissionState {
	if results == nil {
		results = []ObjectMatchGroup{}
	}
	return SubmissionState{status: StatusSuccess, url: url, results: results}
}

// Failed returns the terminal state for a failed submission
func Failed(url, message string) SubmissionState {
	if message == "" {
		message = DefaultFailureMessage
	}
	return SubmissionState{status: StatusFailed, url: url, err: message}
}

// Resolve turns an outcome into the matching terminal state
func Resolve(url string, outcome Outcome) SubmissionState {
	if outcome.Succeeded() {
		return Succeeded(url, outcome.Groups())
	}
	return Failed(url, outcome.Message())
}

func (s SubmissionState) Status() Status { return s.status }

// URL returns the input value the state was built for
func (s SubmissionState) URL() string { return s.url }

// Results returns the match groups; nil unless the status is Success
func (s SubmissionState) Results() []ObjectMatchGroup { return s.results }

// Error returns the failure message; empty unless the status is Failed
func (s SubmissionState) Error() string { return s.err }
