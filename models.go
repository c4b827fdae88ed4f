package members

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountStatus is the account's standing
type AccountStatus = string

const (
	// StatusOK is the only status that permits authentication
	StatusOK AccountStatus = "OK"
	// StatusDisabled marks accounts locked out by an administrator
	StatusDisabled AccountStatus = "disabled"
)

// Locales supported for account preferences
var Locales = []string{"en", "ga"}

// Themes lists the selectable UI themes
var Themes = []string{
	"Cerulean", "Cosmo", "Cyborg", "Darkly", "Flatly", "Journal", "Lumen",
	"Superhero", "Paper", "Readable", "Sandstone", "Simplex", "Slate",
	"Spacelab", "United", "Yeti",
}

// DefaultTheme is used when an account has no theme, or a stored theme
// was retired from the Themes list.
const DefaultTheme = "Flatly"

// Account is the credential record for a member. It references the member
// profile (MemberID) and carries the password material, role set, and
// subscription expiry that gate authentication.
type Account struct {
	bun.BaseModel `bun:"table:accounts,alias:acc"`

	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	MemberID          int64      `bun:"member_id,notnull" json:"member_id,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	EncryptedPassword string     `bun:"encrypted_password,notnull" json:"-"`
	Salt              string     `bun:"salt,notnull" json:"-"`
	Status            string     `bun:"status,notnull" json:"status,omitempty"`
	Roles             string     `bun:"roles,nullzero" json:"roles,omitempty"`
	ExpiresOn         time.Time  `bun:"expires_on,notnull" json:"expires_on,omitempty"`
	VerifiedAt        *time.Time `bun:"verified_at,nullzero" json:"verified_at,omitempty"`
	Locale            string     `bun:"locale,notnull,default:'en'" json:"locale,omitempty"`
	Theme             string     `bun:"theme,nullzero" json:"theme,omitempty"`
	ResetToken        string     `bun:"reset_token,nullzero" json:"-"`
	ResetSentAt       *time.Time `bun:"reset_sent_at,nullzero" json:"-"`
	LastUsedAt        *time.Time `bun:"last_used_at,nullzero" json:"last_used_at,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`

	Member *Member  `bun:"rel:belongs-to,join:member_id=id" json:"member,omitempty"`
	Logins []*Login `bun:"rel:has-many,join:id=account_id" json:"logins,omitempty"`
}

// Member is the minimal projection of the member profile an account
// references. The profile itself is managed elsewhere; the admin search
// screens only join it for name filters.
type Member struct {
	bun.BaseModel `bun:"table:members,alias:mbr"`

	ID        int64  `bun:"id,pk" json:"id,omitempty"`
	FirstName string `bun:"first_name" json:"first_name,omitempty"`
	LastName  string `bun:"last_name" json:"last_name,omitempty"`
}

// StatusOK reports whether the account is in good standing.
func (a *Account) StatusOK() bool {
	return a.Status == StatusOK
}

// Verified reports whether the email address was ever verified.
func (a *Account) Verified() bool {
	return a.VerifiedAt != nil
}

// Subscribed reports whether the subscription expiry is today or later.
func (a *Account) Subscribed() bool {
	today := BeginningOfDay(time.Now())
	return !a.ExpiresOn.Before(today)
}

// HasRole reports whether the account holds the given role. The admin role
// absorbs every other role.
func (a *Account) HasRole(role Role) bool {
	set := ParseRoleSet(a.Roles)
	if len(set) == 0 {
		return false
	}
	if _, ok := set[RoleAdmin]; ok {
		return true
	}
	_, ok := set[role]
	return ok
}

// PreferredTheme returns the stored theme, falling back to the default when
// none is set or the stored one was retired from the Themes list.
func (a *Account) PreferredTheme() string {
	if a.Theme == "" {
		return DefaultTheme
	}
	for _, t := range Themes {
		if t == a.Theme {
			return a.Theme
		}
	}
	return DefaultTheme
}

// Signature identifies the account in admin notices.
func (a *Account) Signature() string {
	return fmt.Sprintf("%s/%s", a.Email, a.ID)
}

// FailureReason tags a journal entry with why an authentication attempt
// failed. An empty reason marks a successful attempt.
type FailureReason = string

const (
	ReasonInvalidPassword FailureReason = "invalid_password"
	ReasonUnverifiedEmail FailureReason = "unverified_email"
	ReasonDisabled        FailureReason = "account_disabled"
	ReasonExpired         FailureReason = "subscription_expired"
)

// Login is one immutable journal entry per authentication attempt. The
// account reference is NULL for attempts against unknown emails; Roles is a
// snapshot of the account's roles at the time of the attempt.
type Login struct {
	bun.BaseModel `bun:"table:logins,alias:lgn"`

	ID        uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	AccountID *uuid.UUID `bun:"account_id,nullzero,type:uuid" json:"account_id,omitempty"`
	Account   *Account   `bun:"rel:belongs-to,join:account_id=id" json:"account,omitempty"`
	Email     string     `bun:"email,notnull" json:"email,omitempty"`
	IP        string     `bun:"ip,notnull" json:"ip,omitempty"`
	Reason    string     `bun:"reason,nullzero" json:"reason,omitempty"`
	Roles     string     `bun:"roles,nullzero" json:"roles,omitempty"`
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Succeeded reports whether the entry records a successful attempt.
func (l *Login) Succeeded() bool {
	return l.Reason == ""
}

// BeginningOfDay truncates a timestamp to midnight local time, used for
// date-only comparisons against subscription expiries.
func BeginningOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
