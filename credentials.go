package members

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"golang.org/x/crypto/pbkdf2"
)

// MinimumPasswordLength is the policy floor for new passwords.
const MinimumPasswordLength = 6

// Digest algorithm parameters. The scheme tag is stored with every digest so
// a future scheme can coexist with stored credentials.
const (
	digestScheme     = "pbkdf2-sha256"
	digestIterations = 64_000
	digestKeyLength  = 32
	saltLength       = 16 // bytes, 32 hex chars stored
)

// HashPassword derives a versioned digest from a password and a hex salt.
// The same inputs always produce the same digest.
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), digestIterations, digestKeyLength, sha256.New)
	return fmt.Sprintf("%s$%d$%s", digestScheme, digestIterations, hex.EncodeToString(key))
}

// VerifyPassword recomputes the digest with the account's stored salt and
// compares in constant time.
func VerifyPassword(account *Account, candidate string) bool {
	if account == nil || account.EncryptedPassword == "" {
		return false
	}

	parts := strings.SplitN(account.EncryptedPassword, "$", 3)
	if len(parts) != 3 || parts[0] != digestScheme {
		return false
	}

	computed := HashPassword(candidate, account.Salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(account.EncryptedPassword)) == 1
}

// RandomSalt generates a fresh hex-encoded salt.
func RandomSalt() string {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process has no usable entropy source
		panic(fmt.Sprintf("members: unable to read random salt: %v", err))
	}
	return hex.EncodeToString(buf)
}

// SetPassword enforces the password policy and, if it passes, stores a fresh
// salt and digest on the account. The previous digest is irrecoverably
// replaced. The caller is responsible for persisting the account.
func SetPassword(account *Account, password string) error {
	if len(password) < MinimumPasswordLength {
		return ErrPasswordTooShort
	}

	if !strings.ContainsAny(password, "0123456789") {
		return ErrPasswordMissingDigit
	}

	account.Salt = RandomSalt()
	account.EncryptedPassword = HashPassword(password, account.Salt)

	return nil
}

// IsPasswordPolicyError reports whether the error is one of the password
// policy rejections, as opposed to an operational failure.
func IsPasswordPolicyError(err error) bool {
	if err == nil {
		return false
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}

	switch rich.TextCode {
	case TextCodePasswordTooShort, TextCodePasswordNoDigit:
		return true
	}
	return false
}
