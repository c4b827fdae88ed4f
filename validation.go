package members

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// ValidateAccount checks field-level rules before an account is persisted.
// Role grammar, locale and theme membership mirror what the admin screens
// are allowed to submit.
func ValidateAccount(account *Account) error {
	err := validation.ValidateStruct(account,
		validation.Field(&account.Email, validation.Required, is.Email),
		validation.Field(&account.EncryptedPassword, validation.Required),
		validation.Field(&account.Salt, validation.Required, validation.Length(32, 32)),
		validation.Field(&account.Status, validation.Required),
		validation.Field(&account.MemberID, validation.Required, validation.Min(int64(1))),
		validation.Field(&account.ExpiresOn, validation.Required),
		validation.Field(&account.Locale, validation.Required, validation.In(anySlice(Locales)...)),
		validation.Field(&account.Theme, validation.In(anySlice(Themes)...)),
		validation.Field(&account.Roles, validation.By(validateRoleGrammar)),
	)

	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "account validation failed")
	}

	return nil
}

// validateRoleGrammar accepts only the canonical representation: recognized
// tokens, sorted, deduplicated, with admin absorbing everything else.
func validateRoleGrammar(value any) error {
	roles, _ := value.(string)
	if roles == "" {
		return nil
	}

	if roles != CanonicalRoles(roles) {
		return fmt.Errorf("roles %q are not in canonical form", roles)
	}

	return nil
}

func anySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
