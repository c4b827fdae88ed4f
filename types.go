package members

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// SeasonTicket is the externally issued subscription credential consumed
// during sign-up. Implementations escalate their checks: Valid with no
// arguments checks well-formedness, with a member id it checks the ticket
// was issued to that member, and with a date it checks expiry as of that
// date.
type SeasonTicket interface {
	Valid() bool
	ValidFor(memberID int64) bool
	ValidOn(memberID int64, date time.Time) bool
	ExpiresOn() time.Time
	Error() string
}

// Mailer delivers password reset instructions. Delivery is a collaborator
// concern; the subsystem only hands over the account id and token.
type Mailer interface {
	ForgotPassword(ctx context.Context, accountID string, token string) error
}

// FailureSink is the operational failure channel. Unexpected errors during
// password changes are logged here with context rather than propagated.
type FailureSink interface {
	Log(label string, context map[string]any)
}

// FailureSinkFunc adapts a function to the FailureSink interface.
type FailureSinkFunc func(label string, context map[string]any)

func (f FailureSinkFunc) Log(label string, context map[string]any) {
	if f != nil {
		f(label, context)
	}
}

type noopFailureSink struct{}

func (noopFailureSink) Log(string, map[string]any) {}

func normalizeFailureSink(s FailureSink) FailureSink {
	if s == nil {
		return noopFailureSink{}
	}
	return s
}

type noopMailer struct{}

func (noopMailer) ForgotPassword(context.Context, string, string) error { return nil }

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] MEMBERS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] MEMBERS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] MEMBERS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] MEMBERS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
