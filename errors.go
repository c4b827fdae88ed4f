package members

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes surfaced to callers. The UI layer maps them to localized
// messages; the subsystem never renders message strings itself.
const (
	TextCodeEnterEmail          = "ENTER_EMAIL"
	TextCodeEnterPassword       = "ENTER_PASSWORD"
	TextCodeInvalidEmail        = "INVALID_EMAIL"
	TextCodeInvalidPassword     = "INVALID_PASSWORD"
	TextCodeUnverifiedEmail     = "UNVERIFIED_EMAIL"
	TextCodeAccountDisabled     = "ACCOUNT_DISABLED"
	TextCodeSubscriptionExpired = "SUBSCRIPTION_EXPIRED"
	TextCodePasswordTooShort    = "PASSWORD_TOO_SHORT"
	TextCodePasswordNoDigit     = "PASSWORD_MISSING_DIGIT"
	TextCodeLastAdmin           = "LAST_ADMIN_REMOVAL"
	TextCodeRoleDenied          = "ROLE_DENIED"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeTicketInvalid       = "TICKET_INVALID"
	TextCodeTicketMismatch      = "TICKET_MISMATCH"
	TextCodeTicketExpired       = "TICKET_EXPIRED"
	TextCodeIncompleteSignup    = "INCOMPLETE_REGISTRATION"
	TextCodeMemberInvalid       = "MEMBER_INVALID"
	TextCodeOldPasswordInvalid  = "OLD_PASSWORD_INVALID"
	TextCodePasswordMismatch    = "PASSWORD_MISMATCH"
	TextCodeApplicationError    = "APPLICATION_ERROR"
	TextCodeGuardedDeletion     = "GUARDED_DELETION"
)

// ErrEnterEmail is returned before any account lookup when the email is blank.
var ErrEnterEmail = goerrors.New("email is required", goerrors.CategoryBadInput).
	WithTextCode(TextCodeEnterEmail).
	WithCode(goerrors.CodeBadRequest)

// ErrEnterPassword is returned before any account lookup when the password is blank.
var ErrEnterPassword = goerrors.New("password is required", goerrors.CategoryBadInput).
	WithTextCode(TextCodeEnterPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidEmail is the unknown-email failure. It deliberately carries the
// same external weight as ErrInvalidPassword so callers cannot probe which
// emails are registered.
var ErrInvalidEmail = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidEmail).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidPassword is the known-account wrong-password failure.
var ErrInvalidPassword = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidPassword).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnverifiedEmail blocks accounts that never completed email verification.
var ErrUnverifiedEmail = goerrors.New("email address has not been verified", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnverifiedEmail).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountDisabled blocks accounts whose status is not OK.
var ErrAccountDisabled = goerrors.New("account is disabled", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountDisabled).
	WithCode(goerrors.CodeForbidden)

// ErrSubscriptionExpired blocks accounts whose subscription lapsed.
var ErrSubscriptionExpired = goerrors.New("subscription has expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeSubscriptionExpired).
	WithCode(goerrors.CodeForbidden)

// ErrPasswordTooShort rejects passwords below the minimum length.
var ErrPasswordTooShort = goerrors.New("password is too short", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordTooShort).
	WithCode(goerrors.CodeBadRequest)

// ErrPasswordMissingDigit rejects passwords without at least one digit.
var ErrPasswordMissingDigit = goerrors.New("password must contain a digit", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordNoDigit).
	WithCode(goerrors.CodeBadRequest)

// ErrLastAdminRemoval protects the final admin account from demotion.
var ErrLastAdminRemoval = goerrors.New("cannot remove the last admin", goerrors.CategoryConflict).
	WithTextCode(TextCodeLastAdmin).
	WithCode(goerrors.CodeConflict)

// ErrRoleDenied rejects role grants to denylisted member ids.
var ErrRoleDenied = goerrors.New("this member may not hold roles", goerrors.CategoryValidation).
	WithTextCode(TextCodeRoleDenied).
	WithCode(goerrors.CodeForbidden)

// ErrResetTokenExpired rejects reset tokens outside their validity window.
var ErrResetTokenExpired = goerrors.New("password reset token has expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeBadRequest)

// FailureFor maps an authentication failure reason recorded in the journal
// back to the error surfaced for it.
func FailureFor(reason FailureReason) error {
	switch reason {
	case ReasonInvalidPassword:
		return ErrInvalidPassword
	case ReasonUnverifiedEmail:
		return ErrUnverifiedEmail
	case ReasonDisabled:
		return ErrAccountDisabled
	case ReasonExpired:
		return ErrSubscriptionExpired
	}
	return nil
}
