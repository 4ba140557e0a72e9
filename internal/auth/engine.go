package auth

import "fmt"

// State is the outcome of one pass of the decision engine.
type State int

const (
	// StateNoToken: no token presented and nobody authenticated yet, deferred.
	StateNoToken State = iota
	// StateTokenPresentValidated: the presented token was verified and installed.
	StateTokenPresentValidated
	// StateTokenPresentRejected: the presented token failed verification. Terminal.
	StateTokenPresentRejected
	// StateAlreadyAuthenticated: the presented token already produced the identity.
	StateAlreadyAuthenticated
	// StateTokenIssued: a new token was minted for the authenticated identity.
	StateTokenIssued
	// StateAlreadyIssued: a token was issued earlier in this request.
	StateAlreadyIssued
)

func (s State) String() string {
	switch s {
	case StateNoToken:
		return "no_token"
	case StateTokenPresentValidated:
		return "token_validated"
	case StateTokenPresentRejected:
		return "token_rejected"
	case StateAlreadyAuthenticated:
		return "already_authenticated"
	case StateTokenIssued:
		return "token_issued"
	case StateAlreadyIssued:
		return "already_issued"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Decision is the result of Decide: the next security context, an optional
// token for the response header, and a rejection reason.
type Decision struct {
	State       State
	Context     SecurityContext
	IssuedToken string
	Reason      error
}

// Continue reports whether the request may proceed.
func (d Decision) Continue() bool {
	return d.State != StateTokenPresentRejected
}

// Engine decides, per request pass, whether to verify, skip, mint or reject.
type Engine struct {
	issuer     TokenIssuer
	verifier   TokenVerifier
	ttlMinutes int
}

// NewEngine builds an engine minting DefaultTokenTTLMinutes tokens.
func NewEngine(issuer TokenIssuer, verifier TokenVerifier) *Engine {
	return &Engine{issuer: issuer, verifier: verifier, ttlMinutes: DefaultTokenTTLMinutes}
}

// Decide runs one pass for the presented header value (empty when absent).
// The returned error is a server fault (issuance or adapter precondition);
// client failures come back as StateTokenPresentRejected with a Reason.
func (e *Engine) Decide(current SecurityContext, presented string) (Decision, error) {
	if presented != "" {
		return e.onTokenProvided(current, presented)
	}
	return e.onTokenNotProvided(current)
}

func (e *Engine) onTokenProvided(current SecurityContext, presented string) (Decision, error) {
	if !reauthenticationRequired(current.Identity, presented) {
		return Decision{State: StateAlreadyAuthenticated, Context: current}, nil
	}

	claims, err := e.verifier.Verify(presented)
	if err != nil {
		next := current
		next.Identity = NoIdentity()
		return Decision{State: StateTokenPresentRejected, Context: next, Reason: err}, nil
	}

	identity, err := FromClaims(claims)
	if err != nil {
		return Decision{}, err
	}

	next := current
	next.Identity = identity.WithToken(presented)
	return Decision{State: StateTokenPresentValidated, Context: next}, nil
}

func reauthenticationRequired(existing Identity, presented string) bool {
	if !existing.Authenticated() {
		return true
	}
	if existing.Token != presented {
		return true
	}
	return existing.IsAnonymous()
}

func (e *Engine) onTokenNotProvided(current SecurityContext) (Decision, error) {
	if current.TokenIssued {
		return Decision{State: StateAlreadyIssued, Context: current}, nil
	}
	if !current.Identity.IsUser() {
		return Decision{State: StateNoToken, Context: current}, nil
	}

	claims, err := ToClaims(current.Identity)
	if err != nil {
		return Decision{}, err
	}
	token, err := e.issuer.Issue(claims, e.ttlMinutes)
	if err != nil {
		return Decision{}, err
	}

	next := current
	next.TokenIssued = true
	return Decision{State: StateTokenIssued, Context: next, IssuedToken: token}, nil
}
