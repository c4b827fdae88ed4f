package members

import (
	"strings"
	"testing"
)

func TestHashPasswordIsDeterministic(t *testing.T) {
	salt := "00112233445566778899aabbccddeeff"

	first := HashPassword("secret123", salt)
	second := HashPassword("secret123", salt)

	if first != second {
		t.Fatalf("same inputs produced different digests: %q vs %q", first, second)
	}

	if !strings.HasPrefix(first, "pbkdf2-sha256$") {
		t.Fatalf("digest missing algorithm tag: %q", first)
	}
}

func TestHashPasswordSaltChangesDigest(t *testing.T) {
	a := HashPassword("secret123", RandomSalt())
	b := HashPassword("secret123", RandomSalt())

	if a == b {
		t.Fatal("different salts should produce different digests")
	}
}

func TestSetPasswordPolicy(t *testing.T) {
	cases := []struct {
		name     string
		password string
		expect   error
	}{
		{name: "too short", password: "a1b2c", expect: ErrPasswordTooShort},
		{name: "empty", password: "", expect: ErrPasswordTooShort},
		{name: "no digit", password: "password", expect: ErrPasswordMissingDigit},
		{name: "acceptable", password: "secret1", expect: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			account := &Account{
				Salt:              "00112233445566778899aabbccddeeff",
				EncryptedPassword: HashPassword("previous9", "00112233445566778899aabbccddeeff"),
			}
			before := account.EncryptedPassword

			err := SetPassword(account, tc.password)

			if tc.expect != nil {
				if err != tc.expect {
					t.Fatalf("expected %v, got %v", tc.expect, err)
				}
				if account.EncryptedPassword != before {
					t.Fatal("rejected password must leave the previous digest unchanged")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if account.EncryptedPassword == before {
				t.Fatal("accepted password should replace the digest")
			}
			if len(account.Salt) != 32 {
				t.Fatalf("expected 32 char salt, got %d", len(account.Salt))
			}
		})
	}
}

func TestSetPasswordRoundTrip(t *testing.T) {
	account := &Account{}

	if err := SetPassword(account, "secret1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !VerifyPassword(account, "secret1") {
		t.Fatal("round trip verification failed")
	}
	if VerifyPassword(account, "secret2") {
		t.Fatal("wrong password should not verify")
	}
}

func TestVerifyPasswordRejectsForeignDigests(t *testing.T) {
	account := &Account{
		Salt:              "00112233445566778899aabbccddeeff",
		EncryptedPassword: "md5$deadbeef",
	}

	if VerifyPassword(account, "secret1") {
		t.Fatal("unknown digest scheme should never verify")
	}

	if VerifyPassword(nil, "secret1") {
		t.Fatal("nil account should never verify")
	}

	if VerifyPassword(&Account{}, "secret1") {
		t.Fatal("account without a digest should never verify")
	}
}

func TestRandomSalt(t *testing.T) {
	a := RandomSalt()
	b := RandomSalt()

	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatal("two salts should not collide")
	}
}

func TestIsPasswordPolicyError(t *testing.T) {
	if !IsPasswordPolicyError(ErrPasswordTooShort) {
		t.Fatal("expected too-short to be a policy error")
	}
	if !IsPasswordPolicyError(ErrPasswordMissingDigit) {
		t.Fatal("expected missing-digit to be a policy error")
	}
	if IsPasswordPolicyError(ErrApplication) {
		t.Fatal("generic failures are not policy errors")
	}
	if IsPasswordPolicyError(nil) {
		t.Fatal("nil is not a policy error")
	}
}
