package members

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// ResetTokenValidity is the fixed window during which a reset token can be
// redeemed, measured from issuance.
const ResetTokenValidity = "24h"

const resetTokenBytes = 32

// ResetTokenIssuer generates unique, time-bounded reset tokens.
type ResetTokenIssuer struct {
	repo   RepositoryManager
	logger Logger
}

func NewResetTokenIssuer(repo RepositoryManager) *ResetTokenIssuer {
	return &ResetTokenIssuer{
		repo:   repo,
		logger: defLogger{},
	}
}

func (i *ResetTokenIssuer) WithLogger(logger Logger) *ResetTokenIssuer {
	if logger != nil {
		i.logger = logger
	}
	return i
}

// Issue generates a globally-unique token and stores it with the current
// timestamp on the account, bypassing full validation so the token survives
// even when other account fields are invalid. Generation loops until a
// never-before-seen value is found; the token space makes collisions
// cryptographically negligible, so the loop is unbounded.
func (i *ResetTokenIssuer) Issue(ctx context.Context, account *Account) (string, error) {
	var token string

	for {
		token = randomResetToken()

		taken, err := i.repo.Accounts().ResetTokenTaken(ctx, token)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check reset token uniqueness")
		}

		if !taken {
			break
		}
	}

	sentAt := time.Now().UTC()
	if err := i.repo.Accounts().SaveResetToken(ctx, account.ID, token, sentAt); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	account.ResetToken = token
	account.ResetSentAt = &sentAt

	return token, nil
}

// Clear removes the token pair from the account.
func (i *ResetTokenIssuer) Clear(ctx context.Context, account *Account) error {
	if err := i.repo.Accounts().ClearResetToken(ctx, account.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear reset token")
	}

	account.ResetToken = ""
	account.ResetSentAt = nil

	return nil
}

// ResetTokenValid reports whether the account holds a token issued within
// the validity window.
func ResetTokenValid(account *Account) bool {
	if account == nil || account.ResetToken == "" || account.ResetSentAt == nil {
		return false
	}

	within, err := IsWithinThresholdPeriod(*account.ResetSentAt, ResetTokenValidity)
	if err != nil {
		return false
	}

	return within
}

func randomResetToken() string {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("members: unable to read random token: %v", err))
	}
	return hex.EncodeToString(buf)
}
