package domain

import "errors" // Error unwrapping

// Kind classifies a failure for the caller
type Kind int

const (
	KindGateway        Kind = iota // Unclassified backend failure, message surfaced verbatim
	KindAuthentication             // No or expired session
	KindValidation                 // Client-detectable bad input
	KindBusinessRule               // Self transfer, insufficient funds, out of stock
	KindNotFound                   // Missing recipient, wallet, profile, product
	KindConflict                   // Duplicate unique field on insert
)

// String returns the error family name shown in messages
func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "AuthenticationError"
	case KindValidation:
		return "ValidationError"
	case KindBusinessRule:
		return "BusinessRuleError"
	case KindNotFound:
		return "NotFoundError"
	case KindConflict:
		return "ConflictError"
	default:
		return "GatewayError"
	}
}

// Error is the single error type returned across operation boundaries
type Error struct {
	Kind    Kind   // Failure family
	Message string // Short human-readable message
}

// Error renders as "<Family>: <message>"
func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Message
}

// Is matches on kind and message so rebuilt errors compare equal to the sentinels
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func Authentication(msg string) *Error { return &Error{Kind: KindAuthentication, Message: msg} }
func Validation(msg string) *Error     { return &Error{Kind: KindValidation, Message: msg} }
func BusinessRule(msg string) *Error   { return &Error{Kind: KindBusinessRule, Message: msg} }
func NotFound(msg string) *Error       { return &Error{Kind: KindNotFound, Message: msg} }
func Conflict(msg string) *Error       { return &Error{Kind: KindConflict, Message: msg} }
func Gateway(msg string) *Error        { return &Error{Kind: KindGateway, Message: msg} }

// KindOf reports the kind of err, or KindGateway for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGateway
}

// Message returns the bare message of err without the family prefix
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

var (
	ErrUnauthenticated   = Authentication("no valid session")
	ErrMissingPurpose    = Validation("missing purpose")
	ErrInvalidAmount     = Validation("invalid amount")
	ErrMissingRecipient  = Validation("missing recipient")
	ErrSelfTransfer      = BusinessRule("self transfer")
	ErrInsufficientFunds = BusinessRule("insufficient funds")
	ErrNoSuchUser        = NotFound("no such user")
	ErrWalletNotFound    = NotFound("wallet not found")
	ErrOutOfStock        = BusinessRule("out of stock")
	ErrAppendOnly        = BusinessRule("transactions are append-only")
)
