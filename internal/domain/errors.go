package domain

// ValidationError reports bad caller input. The message is safe to return
// to the caller verbatim.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

// DomainError reports an operation that is not valid given the current
// state of the entity (bidding on an expired item, re-activating an
// already-active product, and so on).
type DomainError struct {
	Msg string
}

func (e DomainError) Error() string { return e.Msg }

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Entity string
}

func (e NotFoundError) Error() string { return e.Entity + " not found" }

// InvariantViolationError reports data found in a state the model asserts
// is impossible. It aborts processing for the enclosing entity and is never
// shown to callers.
type InvariantViolationError struct {
	Msg string
}

func (e InvariantViolationError) Error() string { return "invariant violation: " + e.Msg }

var (
	ErrProductNotFound = NotFoundError{Entity: "product"}
	ErrItemNotFound    = NotFoundError{Entity: "item"}
	ErrInvalidID       = ValidationError{Msg: "invalid id"}
)
