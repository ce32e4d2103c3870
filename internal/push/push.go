package push

import "context"

// Outcome is the enumerated result of a push attempt. Error classification
// (including gateway message inspection) happens inside the gateway adapter;
// consumers only ever branch on the outcome.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeInvalidToken
	OutcomeTransient
	OutcomePermanent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInvalidToken:
		return "invalid_token"
	case OutcomeTransient:
		return "transient"
	case OutcomePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

type Result struct {
	Outcome Outcome
	Err     error
}

type TokenFailure struct {
	Token   string
	Outcome Outcome
	Err     error
}

type MulticastResult struct {
	SuccessCount int
	FailureCount int
	Failures     []TokenFailure
}

// Gateway is the push-notification delivery adapter. Data values must be
// strings; the underlying payload contract is stringly typed.
type Gateway interface {
	SendToToken(ctx context.Context, token, title, body string, data map[string]string) Result
	SendMulticast(ctx context.Context, tokens []string, title, body string, data map[string]string) (MulticastResult, error)
}
