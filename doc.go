// Package members provides the account and authentication subsystem for a
// club membership back office: credential storage, the password lifecycle
// (policy, change, reset tokens), role management with a last-admin guard,
// an immutable journal of authentication attempts, and the paginated
// search/filter builder the admin listing screens share.
//
// Authentication:
//   - Authenticator runs a short-circuit pipeline over blank-input, account
//     lookup, password, verification, status and subscription checks. Every
//     attempt that reaches account lookup writes exactly one journal entry;
//     unknown emails are journaled without an account reference and surface
//     the same failure as a wrong password.
//
// Password lifecycle:
//   - SetPassword enforces the policy (minimum length, at least one digit)
//     and derives a versioned PBKDF2 digest with a fresh salt.
//   - ResetTokenIssuer mints unique 24-hour reset tokens; the initialize and
//     finalize command handlers drive the email reset flow end to end.
//
// Roles:
//   - Role input is canonicalized (recognized tokens, sorted, deduplicated,
//     admin absorbing all others) and guarded: the last admin can never be
//     demoted and denylisted members can never be granted a role again.
package members
