package members

import (
	"context"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SaveResetTokenSQL persists a reset token without running the full account
// validation, so a token survives even when other fields are invalid.
var SaveResetTokenSQL = `UPDATE "accounts" AS "acc"
SET
	"reset_token" = ?,
	"reset_sent_at" = ?
WHERE
	"acc"."id" = ?
RETURNING *;`

// ClearResetTokenSQL removes the token pair after use or expiry.
var ClearResetTokenSQL = `UPDATE "accounts" AS "acc"
SET
	"reset_token" = NULL,
	"reset_sent_at" = NULL
WHERE
	"acc"."id" = ?
RETURNING *;`

// FinalizePasswordResetSQL swaps the password material, clears the token and
// treats a completed reset as proof of email ownership.
var FinalizePasswordResetSQL = `UPDATE "accounts" AS "acc"
SET
	"encrypted_password" = ?,
	"salt" = ?,
	"reset_token" = NULL,
	"reset_sent_at" = NULL,
	"verified_at" = COALESCE("verified_at", ?)
WHERE
	"acc"."id" = ?
RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]

	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	GetByResetToken(ctx context.Context, token string) (*Account, error)
	ResetTokenTaken(ctx context.Context, token string) (bool, error)
	SaveResetToken(ctx context.Context, id uuid.UUID, token string, sentAt time.Time) error
	SaveResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, sentAt time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	ClearResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error

	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)

	UpdateRoles(ctx context.Context, id uuid.UUID, rawRoles ...string) (*Account, error)
	CountOtherAdmins(ctx context.Context, tx bun.IDB, excludeID uuid.UUID) (int, error)

	PendingRegistrationExists(ctx context.Context, memberID int64, email string) (bool, error)
	MarkVerified(ctx context.Context, id uuid.UUID) (*Account, bool, error)
	TouchLastUsed(ctx context.Context, id uuid.UUID) error

	ReasonToNotDelete(ctx context.Context, account *Account) (string, error)
	DeleteGuarded(ctx context.Context, account *Account) error
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx looks an account up by email, case-insensitively.
func (a *accounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("lower(?TableAlias.email) = lower(?)", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": email,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) GetByResetToken(ctx context.Context, token string) (*Account, error) {
	record := &Account{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.reset_token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"reset_token": token,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *accounts) ResetTokenTaken(ctx context.Context, token string) (bool, error) {
	count, err := a.db.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.reset_token = ?", token).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *accounts) SaveResetToken(ctx context.Context, id uuid.UUID, token string, sentAt time.Time) error {
	return a.SaveResetTokenTx(ctx, a.db, id, token, sentAt)
}

func (a *accounts) SaveResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID, token string, sentAt time.Time) error {
	res, err := a.Repository.RawTx(ctx, tx, SaveResetTokenSQL, token, sentAt, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *accounts) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	return a.ClearResetTokenTx(ctx, a.db, id)
}

func (a *accounts) ClearResetTokenTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	_, err := a.Repository.RawTx(ctx, tx, ClearResetTokenSQL, id.String())
	return err
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)

	if err := ValidateAccount(record); err != nil {
		return nil, err
	}

	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

// UpdateRoles canonicalizes the raw role input and persists it, running the
// denylist and last-admin guards inside the same transaction as the write.
func (a *accounts) UpdateRoles(ctx context.Context, id uuid.UUID, rawRoles ...string) (*Account, error) {
	record := &Account{}

	err := a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(record).
			Where("?TableAlias.id = ?", id).
			Limit(1).
			Scan(ctx)
		if err != nil {
			return err
		}

		canonical := CanonicalRoles(rawRoles...)

		if err := GuardRoleGrant(record, canonical); err != nil {
			return err
		}

		if err := a.guardLastAdminTx(ctx, tx, record, canonical); err != nil {
			return err
		}

		record.Roles = canonical
		now := time.Now()
		record.UpdatedAt = &now

		_, err = tx.NewUpdate().
			Model(record).
			Column("roles", "updated_at").
			WherePK().
			Exec(ctx)
		return err
	})

	if err != nil {
		return nil, err
	}

	return record, nil
}

func (a *accounts) CountOtherAdmins(ctx context.Context, tx bun.IDB, excludeID uuid.UUID) (int, error) {
	if tx == nil {
		tx = a.db
	}
	return tx.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.roles = ?", RoleAdmin).
		Where("?TableAlias.id != ?", excludeID).
		Count(ctx)
}

// guardLastAdminTx fails when the mutation would drop the admin role from
// the only account holding it. The count runs against the same transaction
// as the pending write.
func (a *accounts) guardLastAdminTx(ctx context.Context, tx bun.IDB, account *Account, newRoles string) error {
	if account.Roles != RoleAdmin || newRoles == RoleAdmin {
		return nil
	}

	count, err := a.CountOtherAdmins(ctx, tx, account.ID)
	if err != nil {
		return err
	}

	if count == 0 {
		return ErrLastAdminRemoval
	}

	return nil
}

// PendingRegistrationExists reports whether the member already has an
// unverified account under the same email.
func (a *accounts) PendingRegistrationExists(ctx context.Context, memberID int64, email string) (bool, error) {
	count, err := a.db.NewSelect().
		Model((*Account)(nil)).
		Where("lower(?TableAlias.email) = lower(?)", email).
		Where("?TableAlias.member_id = ?", memberID).
		Where("?TableAlias.verified_at IS NULL").
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkVerified stamps the verification timestamp. The bool result is false
// when the account was already verified (no-op).
func (a *accounts) MarkVerified(ctx context.Context, id uuid.UUID) (*Account, bool, error) {
	record := &Account{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, false, err
	}

	if record.Verified() {
		return record, false, nil
	}

	now := time.Now()
	record.VerifiedAt = &now

	_, err = a.db.NewUpdate().
		Model(record).
		Column("verified_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, false, err
	}

	return record, true, nil
}

func (a *accounts) TouchLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewUpdate().
		Model((*Account)(nil)).
		Set("last_used_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ReasonToNotDelete returns a blocking reason, or "" when the account may be
// deleted. Accounts with roles or recorded logins are never hard-deleted.
func (a *accounts) ReasonToNotDelete(ctx context.Context, account *Account) (string, error) {
	if account.Roles != "" {
		return "has special roles", nil
	}

	count, err := a.db.NewSelect().
		Model((*Login)(nil)).
		Where("?TableAlias.account_id = ?", account.ID).
		Count(ctx)
	if err != nil {
		return "", err
	}

	if count > 0 {
		return "has recorded logins", nil
	}

	return "", nil
}

func (a *accounts) DeleteGuarded(ctx context.Context, account *Account) error {
	reason, err := a.ReasonToNotDelete(ctx, account)
	if err != nil {
		return err
	}

	if reason != "" {
		return goerrors.New("account cannot be deleted", goerrors.CategoryConflict).
			WithTextCode(TextCodeGuardedDeletion).
			WithCode(goerrors.CodeConflict).
			WithMetadata(map[string]any{
				"email":  account.Email,
				"reason": reason,
			})
	}

	_, err = a.db.NewDelete().
		Model(account).
		WherePK().
		Exec(ctx)
	return err
}

// roleDenylist bars these member ids from ever being granted a role again.
var roleDenylist = map[int64]struct{}{
	11:   {},
	295:  {},
	1354: {},
	1733: {},
	5198: {},
	5601: {},
	6141: {},
}

// GuardRoleGrant rejects new role grants to denylisted members. Existing
// records that already hold roles are exempt, as are records without roles.
func GuardRoleGrant(account *Account, newRoles string) error {
	if account.ID == uuid.Nil {
		return nil
	}

	if newRoles == "" || account.Roles != "" {
		return nil
	}

	if _, denied := roleDenylist[account.MemberID]; denied {
		return ErrRoleDenied
	}

	return nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.Status == "" {
		record.Status = StatusOK
	}

	if record.Locale == "" {
		record.Locale = "en"
	}

	record.Roles = CanonicalRoles(record.Roles)
}
