package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies gateway failures so the boundary can map each one to a
// distinct user-facing message. GenerationContradiction is not represented
// here: a clarification is a structured alternate result, not an error.
type Kind string

const (
	// KindRateLimited means the provider throttled us and a retry later
	// should succeed.
	KindRateLimited Kind = "rate_limited"
	// KindQuotaExhausted means the account is out of credits; retrying will
	// not help until the quota resets.
	KindQuotaExhausted Kind = "quota_exhausted"
	// KindMalformed means the provider answered but the payload was not a
	// valid Generation Result.
	KindMalformed Kind = "malformed"
	// KindUnavailable covers transport failures and 5xx responses.
	KindUnavailable Kind = "unavailable"
)

// Error is the only error type the gateway surfaces to callers. The wrapped
// cause stays available for logs; handlers switch on Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind, defaulting to unavailable for foreign
// errors so no raw collaborator error escapes unclassified.
func KindOf(err error) Kind {
	var gatewayErr *Error
	if errors.As(err, &gatewayErr) {
		return gatewayErr.Kind
	}
	return KindUnavailable
}
