package members

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ErrOldPasswordInvalid is returned when the current password check fails
// before a password change.
var ErrOldPasswordInvalid = goerrors.New("old password is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeOldPasswordInvalid).
	WithCode(goerrors.CodeUnauthorized)

// ErrPasswordMismatch is returned when the two copies of the new password
// do not agree.
var ErrPasswordMismatch = goerrors.New("new passwords do not match", goerrors.CategoryBadInput).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrApplication is the generic caller-facing failure. The underlying cause
// goes to the failure sink, never to the caller.
var ErrApplication = goerrors.New("the application encountered an error", goerrors.CategoryInternal).
	WithTextCode(TextCodeApplicationError)

// PasswordManager handles self-service password changes.
type PasswordManager struct {
	repo     RepositoryManager
	failures FailureSink
	logger   Logger
}

func NewPasswordManager(repo RepositoryManager) *PasswordManager {
	return &PasswordManager{
		repo:     repo,
		failures: noopFailureSink{},
		logger:   defLogger{},
	}
}

// WithFailureSink sets the operational failure channel for unexpected errors.
func (m *PasswordManager) WithFailureSink(sink FailureSink) *PasswordManager {
	m.failures = normalizeFailureSink(sink)
	return m
}

func (m *PasswordManager) WithLogger(logger Logger) *PasswordManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// ChangePassword verifies the old password, requires a non-blank, matching
// pair of new passwords, then applies the password policy and persists the
// new digest. Policy failures surface as-is; anything unexpected is logged
// to the failure sink and reported as a generic error.
func (m *PasswordManager) ChangePassword(ctx context.Context, account *Account, old, new1, new2 string) error {
	if !VerifyPassword(account, old) {
		return ErrOldPasswordInvalid
	}

	if new1 == "" {
		return ErrEnterPassword
	}

	if new1 != new2 {
		return ErrPasswordMismatch
	}

	if err := SetPassword(account, new1); err != nil {
		return err
	}

	err := m.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().
			Model(account).
			Column("encrypted_password", "salt").
			WherePK().
			Exec(ctx)
		return err
	})

	if err != nil {
		m.logger.Error("password change failed", "account_id", account.ID.String(), "error", err)
		m.failures.Log("ChangePasswordFailure", map[string]any{
			"account_id": account.ID.String(),
			"error":      err.Error(),
		})
		return ErrApplication
	}

	return nil
}
