package policy

import "errors"

// Codec and parser failures. Evaluator queries never return errors: a
// permission missing from the policy reports [NotFound], not a failure.
var (
	// ErrEmptyInput reports an integer token of zero length, such as the
	// field between two adjacent commas.
	ErrEmptyInput = errors.New("empty integer field")
	// ErrInvalidCharacter reports a byte outside the codec alphabet where
	// an integer was expected.
	ErrInvalidCharacter = errors.New("invalid character")
	// ErrOverflow reports a decoded value above the unsigned 32-bit range.
	ErrOverflow = errors.New("value exceeds uint32 range")
	// ErrMalformedGrammar reports a structural violation of the policy
	// grammar, such as a delimiter in a forbidden position.
	ErrMalformedGrammar = errors.New("malformed policy grammar")
	// ErrNullInput reports a nil policy where a value is required.
	ErrNullInput = errors.New("nil policy")
	// ErrRegistryFrozen reports a registration attempt after [Registry.Freeze].
	ErrRegistryFrozen = errors.New("registry frozen")
)
