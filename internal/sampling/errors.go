package sampling

import "errors"

var (
	// ErrInvalidParameters marks configuration values outside their domain
	// (confidence, error rates, sizes). Reported to the caller, never retried.
	ErrInvalidParameters = errors.New("invalid sampling parameters")

	// ErrUnknownColumn marks a stratify or id column absent from the input.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrInsufficientPopulation marks an allocation that exceeds a stratum's
	// population. The allocator caps at capacity, so hitting this means the
	// allocator/selector contract broke; it is a defect, not a user error.
	ErrInsufficientPopulation = errors.New("insufficient population")
)
