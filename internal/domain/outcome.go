package domain

// DefaultFailureMessage is used when a failure carries no message of its own
const DefaultFailureMessage = "Failed to process Instagram URL"

// Outcome is the result of one submission attempt: either the match groups
// or a user-facing failure message. Build it with OutcomeSuccess or OutcomeFailure.
type Outcome struct {
	groups  []ObjectMatchGroup
	message string
	err     error
	ok      bool
}

// OutcomeSuccess wraps the groups returned by the analysis service
func OutcomeSuccess(groups []ObjectMatchGroup) Outcome {
	if groups == nil {
		groups = []ObjectMatchGroup{}
	}
	return Outcome{groups: groups, ok: true}
}

// OutcomeFailure wraps a user-facing message and the classified cause
func OutcomeFailure(message string, err error) Outcome {
	if message == "" {
		message = DefaultFailureMessage
	}
	return Outcome{message: message, err: err}
}

// Succeeded reports whether the outcome carries results
func (o Outcome) Succeeded() bool { return o.ok }

// Groups returns the match groups of a successful outcome
func (o Outcome) Groups() []ObjectMatchGroup { return o.groups }

// Message returns the failure message, empty on success
func (o Outcome) Message() string { return o.message }

// Err returns the classified cause of a failure (ErrTransport, ErrProtocol, ErrContract)
func (o Outcome) Err() error { return o.err }
