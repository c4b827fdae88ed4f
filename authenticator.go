package members

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Authenticator runs the sequential authentication pipeline. Each check
// after account lookup journals exactly one entry and the first failing
// check wins; later checks are never reached.
type Authenticator struct {
	repo   RepositoryManager
	logger Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager) *Authenticator {
	return &Authenticator{
		repo:   repo,
		logger: defLogger{},
	}
}

func (s *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Authenticate resolves an email/password pair into an account.
//
// Blank input fails before any account context exists, so nothing is
// journaled. An unknown email is journaled without an account reference and
// surfaced exactly like a wrong password, so callers cannot probe which
// emails are registered.
func (s *Authenticator) Authenticate(ctx context.Context, email, password, ip string) (*Account, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrEnterEmail
	}

	if password == "" {
		return nil, ErrEnterPassword
	}

	account, err := s.repo.Accounts().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			s.repo.Logins().Record(ctx, nil, email, ip, ReasonInvalidPassword)
			return nil, ErrInvalidEmail
		}
		s.logger.Error("account lookup failed", "email", email, "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account")
	}

	var reason FailureReason
	switch {
	case !VerifyPassword(account, password):
		reason = ReasonInvalidPassword
	case !account.Verified():
		reason = ReasonUnverifiedEmail
	case !account.StatusOK():
		reason = ReasonDisabled
	case !account.Subscribed():
		reason = ReasonExpired
	}

	s.repo.Logins().Record(ctx, account, email, ip, reason)

	if reason != "" {
		return nil, FailureFor(reason)
	}

	return account, nil
}

// AuthenticatePrincipal wraps Authenticate, returning the Guest principal
// alongside the failure instead of a nil account.
func (s *Authenticator) AuthenticatePrincipal(ctx context.Context, email, password, ip string) (Principal, error) {
	account, err := s.Authenticate(ctx, email, password, ip)
	if err != nil {
		return Guest{}, err
	}
	return Authenticated{Account: account}, nil
}
