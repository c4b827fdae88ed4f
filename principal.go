package members

// Principal is the caller identity attached to a request: either an
// authenticated account or the guest. Callers dispatch on the concrete
// variant rather than duck-typing shared method names.
type Principal interface {
	Guest() bool
	HasRole(role Role) bool
	PreferredTheme() string
}

// Authenticated wraps a real account.
type Authenticated struct {
	Account *Account
}

func (p Authenticated) Guest() bool { return false }

func (p Authenticated) HasRole(role Role) bool {
	if p.Account == nil {
		return false
	}
	return p.Account.HasRole(role)
}

func (p Authenticated) PreferredTheme() string {
	if p.Account == nil {
		return DefaultTheme
	}
	return p.Account.PreferredTheme()
}

// Guest is the unauthenticated principal. It holds no roles and sees the
// default theme.
type Guest struct{}

func (Guest) Guest() bool            { return true }
func (Guest) HasRole(Role) bool      { return false }
func (Guest) PreferredTheme() string { return DefaultTheme }

// PrincipalFor wraps an account as a principal, or returns Guest for nil.
func PrincipalFor(account *Account) Principal {
	if account == nil {
		return Guest{}
	}
	return Authenticated{Account: account}
}
