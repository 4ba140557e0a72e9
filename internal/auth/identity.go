package auth

// IdentityKind tags the variant held by an Identity.
type IdentityKind int

const (
	// IdentityNone means nobody has been authenticated yet.
	IdentityNone IdentityKind = iota
	// IdentityAnonymous is the placeholder installed for unauthenticated callers.
	IdentityAnonymous
	// IdentityCredentials comes from primary login (username and password).
	IdentityCredentials
	// IdentityToken was reconstructed from a verified token.
	IdentityToken
)

// ProtectedPassword stands in for credentials that are never recoverable from a token.
const ProtectedPassword = "[PROTECTED]"

const anonymousName = "anonymousUser"

func (k IdentityKind) String() string {
	switch k {
	case IdentityAnonymous:
		return "anonymous"
	case IdentityCredentials:
		return "credentials"
	case IdentityToken:
		return "token"
	default:
		return "none"
	}
}

// Principal is who the caller is.
type Principal struct {
	Username string
	Password string
	Roles    []string
}

// Identity is the request-scoped authentication result. Token is only set
// for IdentityToken and holds the token the identity was built from.
type Identity struct {
	Kind      IdentityKind
	Principal Principal
	Token     string
}

// NoIdentity is the zero identity.
func NoIdentity() Identity {
	return Identity{Kind: IdentityNone}
}

// AnonymousIdentity is the placeholder for callers without credentials.
func AnonymousIdentity() Identity {
	return Identity{
		Kind:      IdentityAnonymous,
		Principal: Principal{Username: anonymousName, Roles: []string{"ANONYMOUS"}},
	}
}

// CredentialsIdentity wraps a principal authenticated by primary login.
func CredentialsIdentity(username string, roles []string) Identity {
	return Identity{
		Kind: IdentityCredentials,
		Principal: Principal{
			Username: username,
			Password: ProtectedPassword,
			Roles:    append([]string(nil), roles...),
		},
	}
}

// WithToken records the originating token.
func (i Identity) WithToken(token string) Identity {
	i.Token = token
	return i
}

// Authenticated reports whether the identity is marked authenticated. The
// anonymous placeholder counts, as it does in the surrounding pipeline.
func (i Identity) Authenticated() bool {
	switch i.Kind {
	case IdentityAnonymous, IdentityCredentials, IdentityToken:
		return true
	default:
		return false
	}
}

// IsAnonymous reports whether this is the anonymous placeholder.
func (i Identity) IsAnonymous() bool {
	return i.Kind == IdentityAnonymous
}

// IsUser reports whether a real principal is authenticated.
func (i Identity) IsUser() bool {
	return i.Authenticated() && !i.IsAnonymous()
}

// HasRole reports whether the principal was granted role.
func (i Identity) HasRole(role string) bool {
	for _, r := range i.Principal.Roles {
		if r == role {
			return true
		}
	}
	return false
}
