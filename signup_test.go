package members_test

import (
	"context"
	"testing"
	"time"

	members "github.com/clubkit/go-members"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUpEscalatingTicketChecks(t *testing.T) {
	_, repo, cleanup := setupDB(t)
	defer cleanup()

	handler := members.NewSignUpHandler(repo)
	ctx := context.Background()
	nextYear := members.BeginningOfDay(time.Now()).AddDate(1, 0, 0)

	_, err := handler.Execute(ctx, members.SignUpMessage{
		MemberID: 0,
		Ticket:   fakeTicket{wellFormed: true, memberID: 42, expiry: nextYear},
	})
	assert.ErrorIs(t, err, members.ErrMemberInvalid)

	_, err = handler.Execute(ctx, members.SignUpMessage{MemberID: 42})
	assert.ErrorIs(t, err, members.ErrTicketInvalid)

	_, err = handler.Execute(ctx, members.SignUpMessage{
		MemberID: 42,
		Ticket:   fakeTicket{wellFormed: false, memberID: 42, expiry: nextYear},
	})
	assert.ErrorIs(t, err, members.ErrTicketInvalid)

	_, err = handler.Execute(ctx, members.SignUpMessage{
		MemberID: 42,
		Ticket:   fakeTicket{wellFormed: true, memberID: 7, expiry: nextYear},
	})
	assert.ErrorIs(t, err, members.ErrTicketMismatch)

	lastYear := members.BeginningOfDay(time.Now()).AddDate(-1, 0, 0)
	_, err = handler.Execute(ctx, members.SignUpMessage{
		MemberID: 42,
		Ticket:   fakeTicket{wellFormed: true, memberID: 42, expiry: lastYear},
	})
	assert.ErrorIs(t, err, members.ErrTicketExpired)
}

func TestSignUpRejectsPendingRegistration(t *testing.T) {
	_, repo, cleanup := setupDB(t)
	defer cleanup()

	pending := seedAccount(t, repo, "pat@example.com", "secret1", unverified())

	handler := members.NewSignUpHandler(repo)
	nextYear := members.BeginningOfDay(time.Now()).AddDate(1, 0, 0)

	_, err := handler.Execute(context.Background(), members.SignUpMessage{
		MemberID: pending.MemberID,
		Email:    "pat@example.com",
		Password: "secret1",
		Ticket:   fakeTicket{wellFormed: true, memberID: pending.MemberID, expiry: nextYear},
	})
	assert.ErrorIs(t, err, members.ErrIncompleteRegistration)
}

func TestSignUpRequiresPassword(t *testing.T) {
	_, repo, cleanup := setupDB(t)
	defer cleanup()

	handler := members.NewSignUpHandler(repo)
	nextYear := members.BeginningOfDay(time.Now()).AddDate(1, 0, 0)

	_, err := handler.Execute(context.Background(), members.SignUpMessage{
		MemberID: 42,
		Email:    "pat@example.com",
		Ticket:   fakeTicket{wellFormed: true, memberID: 42, expiry: nextYear},
	})
	assert.ErrorIs(t, err, members.ErrEnterPassword)
}

func TestSignUpCreatesUnverifiedAccount(t *testing.T) {
	_, repo, cleanup := setupDB(t)
	defer cleanup()

	handler := members.NewSignUpHandler(repo)
	nextYear := members.BeginningOfDay(time.Now()).AddDate(1, 0, 0)

	account, err := handler.Execute(context.Background(), members.SignUpMessage{
		MemberID: 42,
		Email:    "pat@example.com",
		Password: "secret1",
		Locale:   "ga",
		Ticket:   fakeTicket{wellFormed: true, memberID: 42, expiry: nextYear},
	})
	require.NoError(t, err)
	require.NotNil(t, account)

	assert.Equal(t, int64(42), account.MemberID)
	assert.Equal(t, members.StatusOK, account.Status)
	assert.Equal(t, "ga", account.Locale)
	assert.False(t, account.Verified())
	assert.True(t, account.ExpiresOn.Equal(nextYear))
	assert.True(t, members.VerifyPassword(account, "secret1"))

	// The record is persisted and findable.
	stored := reloadAccount(t, repo, "pat@example.com")
	assert.Equal(t, account.ID, stored.ID)
	assert.False(t, stored.Verified())
}

func TestSignUpTicketExpiringTodayStillValid(t *testing.T) {
	_, repo, cleanup := setupDB(t)
	defer cleanup()

	handler := members.NewSignUpHandler(repo)
	today := members.BeginningOfDay(time.Now())

	account, err := handler.Execute(context.Background(), members.SignUpMessage{
		MemberID: 42,
		Email:    "pat@example.com",
		Password: "secret1",
		Ticket:   fakeTicket{wellFormed: true, memberID: 42, expiry: today},
	})
	require.NoError(t, err)
	assert.True(t, account.ExpiresOn.Equal(today))
}
