package members

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type InitializePasswordResetMessage struct {
	Email string `json:"email" example:"pat.moran@example.com" doc:"Account email."`
}

func (m InitializePasswordResetMessage) Type() string { return "account.password_reset" }

// InitializePasswordResetHandler issues a reset token and hands it to the
// mail collaborator. Unknown emails complete without error so the endpoint
// cannot be used to probe which addresses are registered.
type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	issuer *ResetTokenIssuer
	mailer Mailer
	logger Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		issuer: NewResetTokenIssuer(repo),
		mailer: noopMailer{},
		logger: defLogger{},
	}
}

// WithMailer sets the collaborator that delivers reset instructions.
func (h *InitializePasswordResetHandler) WithMailer(mailer Mailer) *InitializePasswordResetHandler {
	if mailer != nil {
		h.mailer = mailer
	}
	return h
}

func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
		h.issuer = h.issuer.WithLogger(logger)
	}
	return h
}

// Execute returns the issued token, or "" when no account matches the email.
func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) (string, error) {
	select {
	case <-ctx.Done():
		return "", goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	account, err := h.repo.Accounts().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", nil
		}
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account for password reset")
	}

	token, err := h.issuer.Issue(ctx, account)
	if err != nil {
		return "", err
	}

	if err := h.mailer.ForgotPassword(ctx, account.ID.String(), token); err != nil {
		h.logger.Error("failed to send reset instructions", "account_id", account.ID.String(), "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send reset instructions")
	}

	return token, nil
}
