package members_test

import (
	"context"
	"database/sql"
	"sync/atomic"
	"testing"
	"time"

	members "github.com/clubkit/go-members"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	sqliteCreateAccounts = `CREATE TABLE accounts (
    id TEXT NOT NULL PRIMARY KEY,
    member_id INTEGER NOT NULL,
    email TEXT NOT NULL UNIQUE,
    encrypted_password TEXT NOT NULL,
    salt TEXT NOT NULL,
    status TEXT NOT NULL,
    roles TEXT,
    expires_on TIMESTAMP NOT NULL,
    verified_at TIMESTAMP NULL,
    locale TEXT NOT NULL DEFAULT 'en',
    theme TEXT,
    reset_token TEXT,
    reset_sent_at TIMESTAMP NULL,
    last_used_at TIMESTAMP NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP
);`

	sqliteCreateLogins = `CREATE TABLE logins (
    id TEXT NOT NULL PRIMARY KEY,
    account_id TEXT NULL,
    email TEXT NOT NULL,
    ip TEXT NOT NULL,
    reason TEXT,
    roles TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`

	sqliteCreateMembers = `CREATE TABLE members (
    id INTEGER NOT NULL PRIMARY KEY,
    first_name TEXT,
    last_name TEXT
);`
)

func setupDB(t *testing.T) (*bun.DB, members.RepositoryManager, func()) {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	for _, ddl := range []string{sqliteCreateAccounts, sqliteCreateLogins, sqliteCreateMembers} {
		_, err = db.Exec(ddl)
		require.NoError(t, err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = sqldb.Close()
	}

	return db, members.NewRepositoryManager(db), cleanup
}

var memberSeq int64 = 1000

func nextMemberID() int64 {
	return atomic.AddInt64(&memberSeq, 1)
}

type accountOption func(*members.Account)

func withMemberID(id int64) accountOption {
	return func(a *members.Account) { a.MemberID = id }
}

func withRoles(roles string) accountOption {
	return func(a *members.Account) { a.Roles = roles }
}

func withTheme(theme string) accountOption {
	return func(a *members.Account) { a.Theme = theme }
}

func unverified() accountOption {
	return func(a *members.Account) { a.VerifiedAt = nil }
}

func disabled() accountOption {
	return func(a *members.Account) { a.Status = members.StatusDisabled }
}

func expiresOn(date time.Time) accountOption {
	return func(a *members.Account) { a.ExpiresOn = date }
}

// seedAccount persists a verified account in good standing, subscribed for
// another year, unless options say otherwise.
func seedAccount(t *testing.T, repo members.RepositoryManager, email, password string, opts ...accountOption) *members.Account {
	t.Helper()

	now := time.Now()
	account := &members.Account{
		MemberID:   nextMemberID(),
		Email:      email,
		Status:     members.StatusOK,
		ExpiresOn:  members.BeginningOfDay(now).AddDate(1, 0, 0),
		VerifiedAt: &now,
	}
	require.NoError(t, members.SetPassword(account, password))

	for _, opt := range opts {
		opt(account)
	}

	created, err := repo.Accounts().Create(context.Background(), account)
	require.NoError(t, err)

	return created
}

func seedMember(t *testing.T, db *bun.DB, id int64, firstName, lastName string) {
	t.Helper()
	_, err := db.Exec("INSERT INTO members (id, first_name, last_name) VALUES (?, ?, ?)", id, firstName, lastName)
	require.NoError(t, err)
}

func allLogins(t *testing.T, db *bun.DB) []*members.Login {
	t.Helper()

	var entries []*members.Login
	err := db.NewSelect().Model(&entries).Scan(context.Background())
	require.NoError(t, err)

	return entries
}

func reloadAccount(t *testing.T, repo members.RepositoryManager, email string) *members.Account {
	t.Helper()

	account, err := repo.Accounts().GetByEmail(context.Background(), email)
	require.NoError(t, err)

	return account
}

type recordingMailer struct {
	accountID string
	token     string
	calls     int
	err       error
}

func (m *recordingMailer) ForgotPassword(_ context.Context, accountID, token string) error {
	m.calls++
	m.accountID = accountID
	m.token = token
	return m.err
}

// fakeTicket implements SeasonTicket with escalating checks, the way the
// real ticketing collaborator behaves.
type fakeTicket struct {
	wellFormed bool
	memberID   int64
	expiry     time.Time
	message    string
}

func (f fakeTicket) Valid() bool { return f.wellFormed }

func (f fakeTicket) ValidFor(memberID int64) bool {
	return f.wellFormed && memberID == f.memberID
}

func (f fakeTicket) ValidOn(memberID int64, date time.Time) bool {
	return f.ValidFor(memberID) && !f.expiry.Before(date)
}

func (f fakeTicket) ExpiresOn() time.Time { return f.expiry }

func (f fakeTicket) Error() string { return f.message }
