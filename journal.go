package members

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Logins is the append-only journal of authentication attempts. Entries are
// never updated or deleted through normal flow.
type Logins interface {
	repository.Repository[*Login]

	Record(ctx context.Context, account *Account, email, ip string, reason FailureReason) *Login
	RecordTx(ctx context.Context, tx bun.IDB, account *Account, email, ip string, reason FailureReason) *Login
	CountForAccount(ctx context.Context, id uuid.UUID) (int, error)
}

type logins struct {
	repository.Repository[*Login]
	db     *bun.DB
	logger Logger
}

var (
	_ Logins                        = (*logins)(nil)
	_ repository.Repository[*Login] = (*logins)(nil)
)

func NewLoginsRepository(db *bun.DB) Logins {
	repo := repository.NewRepository[*Login](db, repository.ModelHandlers[*Login]{
		NewRecord: func() *Login { return &Login{} },
		GetID: func(l *Login) uuid.UUID {
			if l == nil {
				return uuid.Nil
			}
			return l.ID
		},
		SetID: func(l *Login, id uuid.UUID) {
			if l != nil {
				l.ID = id
			}
		},
	})

	return &logins{
		Repository: repo,
		db:         db,
		logger:     defLogger{},
	}
}

func (l *logins) Record(ctx context.Context, account *Account, email, ip string, reason FailureReason) *Login {
	return l.RecordTx(ctx, l.db, account, email, ip, reason)
}

// RecordTx appends one journal entry. It never fails the caller: journaling
// must not block an authentication attempt, so insert errors are only logged.
func (l *logins) RecordTx(ctx context.Context, tx bun.IDB, account *Account, email, ip string, reason FailureReason) *Login {
	now := time.Now()
	entry := &Login{
		ID:        uuid.New(),
		Email:     email,
		IP:        ip,
		Reason:    reason,
		CreatedAt: &now,
	}

	if account != nil {
		id := account.ID
		entry.AccountID = &id
		entry.Email = account.Email
		entry.Roles = account.Roles
	}

	if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
		l.logger.Error("failed to journal login attempt", "email", email, "error", err)
	}

	return entry
}

func (l *logins) CountForAccount(ctx context.Context, id uuid.UUID) (int, error) {
	return l.db.NewSelect().
		Model((*Login)(nil)).
		Where("?TableAlias.account_id = ?", id).
		Count(ctx)
}
