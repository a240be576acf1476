// Package entity contains the core business objects of the project.
package entity

// AccountType represents the tenant kind of an account.
type AccountType string

const (
	// AccountTypeBusiness indicates a business-owner account.
	AccountTypeBusiness AccountType = "business"
	// AccountTypeIndividual indicates an individual account.
	AccountTypeIndividual AccountType = "individual"
)

// String returns the string representation of the AccountType.
func (t AccountType) String() string {
	return string(t)
}

// IsValid checks if the AccountType is a valid value.
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeBusiness, AccountTypeIndividual:
		return true
	default:
		return false
	}
}

// AccountScope restricts which account types an operation accepts.
// It replaces the per-tenant duplication of sign-in flows with a single
// parameterized check.
type AccountScope string

const (
	// ScopeBusiness accepts business accounts only.
	ScopeBusiness AccountScope = "business"
	// ScopeIndividual accepts individual accounts only.
	ScopeIndividual AccountScope = "individual"
	// ScopeAny accepts every account type.
	ScopeAny AccountScope = "any"
)

// Allows reports whether an account of type t may authenticate under the scope.
func (s AccountScope) Allows(t AccountType) bool {
	switch s {
	case ScopeBusiness:
		return t == AccountTypeBusiness
	case ScopeIndividual:
		return t == AccountTypeIndividual
	case ScopeAny:
		return true
	default:
		return false
	}
}
