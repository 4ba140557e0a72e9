package auth

// ClaimName identifies an identity attribute carried inside a token.
type ClaimName string

const (
	ClaimUserName ClaimName = "user_name"
	ClaimRole     ClaimName = "role"
)

// knownClaims lists the claim names a token may carry, in payload order.
var knownClaims = []ClaimName{ClaimUserName, ClaimRole}

// Claim is a single named identity attribute. Treat it as immutable.
type Claim struct {
	Name  ClaimName
	Value string
}

// NewClaim builds a claim.
func NewClaim(name ClaimName, value string) Claim {
	return Claim{Name: name, Value: value}
}

func (n ClaimName) known() bool {
	for _, k := range knownClaims {
		if k == n {
			return true
		}
	}
	return false
}

// ClaimValue returns the value of the first claim with the given name.
func ClaimValue(claims []Claim, name ClaimName) (string, bool) {
	for _, c := range claims {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}
