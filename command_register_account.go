package members

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterAccountMessage is an administrative account creation: the record
// is created verified, in good standing, with an expiry chosen by the admin.
type RegisterAccountMessage struct {
	MemberID  int64     `json:"member_id"`
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Roles     []string  `json:"roles"`
	ExpiresOn time.Time `json:"expires_on"`
	Locale    string    `json:"locale"`
	UseHashid bool
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

type RegisterAccountHandler struct {
	repo RepositoryManager
}

func NewRegisterAccountHandler(repo RepositoryManager) *RegisterAccountHandler {
	return &RegisterAccountHandler{repo: repo}
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) (*Account, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) (*Account, error) {
	account := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := SetPassword(account, event.Password); err != nil {
			return err
		}

		now := time.Now()
		account.MemberID = event.MemberID
		account.Email = event.Email
		account.Status = StatusOK
		account.VerifiedAt = &now
		account.ExpiresOn = event.ExpiresOn
		account.Locale = event.Locale
		account.Roles = CanonicalRoles(event.Roles...)

		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				account.ID = id
			}
		}

		var err error
		if account, err = h.repo.Accounts().CreateTx(ctx, tx, account); err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}

		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	return account, nil
}
