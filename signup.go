package members

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// ErrTicketInvalid rejects malformed season tickets.
var ErrTicketInvalid = goerrors.New("season ticket is invalid", goerrors.CategoryValidation).
	WithTextCode(TextCodeTicketInvalid).
	WithCode(goerrors.CodeBadRequest)

// ErrTicketMismatch rejects tickets issued to a different member.
var ErrTicketMismatch = goerrors.New("season ticket was issued to another member", goerrors.CategoryValidation).
	WithTextCode(TextCodeTicketMismatch).
	WithCode(goerrors.CodeBadRequest)

// ErrTicketExpired rejects tickets whose subscription lapsed.
var ErrTicketExpired = goerrors.New("season ticket has expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeTicketExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrIncompleteRegistration rejects a sign-up while an unverified
// registration for the same email already exists under the same member.
var ErrIncompleteRegistration = goerrors.New("an unverified registration already exists for this email", goerrors.CategoryConflict).
	WithTextCode(TextCodeIncompleteSignup).
	WithCode(goerrors.CodeConflict)

// ErrMemberInvalid rejects sign-ups without a valid member reference.
var ErrMemberInvalid = goerrors.New("member reference is invalid", goerrors.CategoryBadInput).
	WithTextCode(TextCodeMemberInvalid).
	WithCode(goerrors.CodeBadRequest)

// SignUpMessage is a member-initiated registration backed by a season
// ticket. The ticket is validated by the external collaborator; the handler
// only sequences the escalating checks.
type SignUpMessage struct {
	MemberID int64  `json:"member_id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Locale   string `json:"locale"`
	Ticket   SeasonTicket
}

func (m SignUpMessage) Type() string { return "account.sign_up" }

type SignUpHandler struct {
	repo   RepositoryManager
	logger Logger
}

func NewSignUpHandler(repo RepositoryManager) *SignUpHandler {
	return &SignUpHandler{
		repo:   repo,
		logger: defLogger{},
	}
}

func (h *SignUpHandler) WithLogger(logger Logger) *SignUpHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *SignUpHandler) Execute(ctx context.Context, event SignUpMessage) (*Account, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during sign up",
		)
	default:
		return h.execute(ctx, event)
	}
}

// execute runs the sign-up checks in escalating order and fails at the
// first one that does not hold. Nothing is persisted unless every check
// passes; the expiry date is derived from the ticket.
func (h *SignUpHandler) execute(ctx context.Context, event SignUpMessage) (*Account, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.MemberID <= 0 {
		return nil, ErrMemberInvalid
	}

	t := event.Ticket
	if t == nil || !t.Valid() {
		return nil, ErrTicketInvalid
	}

	if !t.ValidFor(event.MemberID) {
		return nil, ErrTicketMismatch
	}

	if !t.ValidOn(event.MemberID, BeginningOfDay(time.Now())) {
		return nil, ErrTicketExpired
	}

	pending, err := h.repo.Accounts().PendingRegistrationExists(ctx, event.MemberID, event.Email)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for pending registrations")
	}
	if pending {
		return nil, ErrIncompleteRegistration
	}

	if event.Password == "" {
		return nil, ErrEnterPassword
	}

	account := &Account{
		MemberID:  event.MemberID,
		Email:     event.Email,
		Locale:    event.Locale,
		Status:    StatusOK,
		ExpiresOn: t.ExpiresOn(),
	}

	if err := SetPassword(account, event.Password); err != nil {
		return nil, err
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = h.repo.Accounts().CreateTx(ctx, tx, account)
		return err
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "sign up transaction failed")
	}

	return account, nil
}
