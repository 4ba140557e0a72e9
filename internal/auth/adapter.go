package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompleteIdentity means the identity has no granted role.
	ErrIncompleteIdentity = errors.New("identity has no granted role")
	// ErrMissingClaim means a verified claim set lacks a required claim.
	ErrMissingClaim = errors.New("required claim missing")
)

// ToClaims extracts the username and the first granted role. Only one role is
// encoded.
func ToClaims(id Identity) ([]Claim, error) {
	if len(id.Principal.Roles) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrIncompleteIdentity, id.Principal.Username)
	}
	return []Claim{
		NewClaim(ClaimUserName, id.Principal.Username),
		NewClaim(ClaimRole, id.Principal.Roles[0]),
	}, nil
}

// FromClaims rebuilds a token identity with a placeholder password.
func FromClaims(claims []Claim) (Identity, error) {
	username, ok := ClaimValue(claims, ClaimUserName)
	if !ok {
		return NoIdentity(), fmt.Errorf("%w: %s", ErrMissingClaim, ClaimUserName)
	}
	role, ok := ClaimValue(claims, ClaimRole)
	if !ok {
		return NoIdentity(), fmt.Errorf("%w: %s", ErrMissingClaim, ClaimRole)
	}
	return Identity{
		Kind: IdentityToken,
		Principal: Principal{
			Username: username,
			Password: ProtectedPassword,
			Roles:    []string{role},
		},
	}, nil
}
