package members

import (
	"testing"
	"time"
)

func TestPreferredTheme(t *testing.T) {
	cases := []struct {
		name   string
		theme  string
		expect string
	}{
		{name: "empty falls back to default", theme: "", expect: DefaultTheme},
		{name: "known theme kept", theme: "Slate", expect: "Slate"},
		{name: "retired theme falls back", theme: "Amelia", expect: DefaultTheme},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			account := &Account{Theme: tc.theme}
			if got := account.PreferredTheme(); got != tc.expect {
				t.Fatalf("PreferredTheme() = %q, expected %q", got, tc.expect)
			}
		})
	}
}

func TestSubscribed(t *testing.T) {
	today := BeginningOfDay(time.Now())

	cases := []struct {
		name      string
		expiresOn time.Time
		expect    bool
	}{
		{name: "expires today", expiresOn: today, expect: true},
		{name: "expires tomorrow", expiresOn: today.AddDate(0, 0, 1), expect: true},
		{name: "expired yesterday", expiresOn: today.AddDate(0, 0, -1), expect: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			account := &Account{ExpiresOn: tc.expiresOn}
			if got := account.Subscribed(); got != tc.expect {
				t.Fatalf("Subscribed() = %t, expected %t", got, tc.expect)
			}
		})
	}
}

func TestVerified(t *testing.T) {
	account := &Account{}
	if account.Verified() {
		t.Fatal("account without a timestamp is unverified")
	}

	now := time.Now()
	account.VerifiedAt = &now
	if !account.Verified() {
		t.Fatal("account with a timestamp is verified")
	}
}

func TestStatusOK(t *testing.T) {
	if ok := (&Account{Status: StatusOK}).StatusOK(); !ok {
		t.Fatal("OK status should report ok")
	}
	if ok := (&Account{Status: StatusDisabled}).StatusOK(); ok {
		t.Fatal("disabled status should not report ok")
	}
}

func TestLoginSucceeded(t *testing.T) {
	if !(&Login{}).Succeeded() {
		t.Fatal("entry without a reason records success")
	}
	if (&Login{Reason: ReasonInvalidPassword}).Succeeded() {
		t.Fatal("entry with a reason records failure")
	}
}

func TestBeginningOfDay(t *testing.T) {
	ts := time.Date(2025, time.March, 14, 17, 42, 9, 120, time.Local)
	got := BeginningOfDay(ts)

	expect := time.Date(2025, time.March, 14, 0, 0, 0, 0, time.Local)
	if !got.Equal(expect) {
		t.Fatalf("BeginningOfDay() = %v, expected %v", got, expect)
	}
}
