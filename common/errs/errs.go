package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound        = ErrorKind("Not Found")
	InvalidArgument = ErrorKind("invalid argument")
	Unsupported     = ErrorKind("unsupported")
	ConflictSetting = ErrorKind("conflict setting")
	InternalError   = ErrorKind("internal error")
	Timeout         = ErrorKind("timeout")
	OverflowUint64  = ErrorKind("overflow uint64")
	OverflowUint128 = ErrorKind("overflow uint128")
)

// Authorization errors. Fatal to the call, the caller identity must change.
const (
	Unauthorized = ErrorKind("unauthorized")
	NotCreator   = ErrorKind("caller is not the series creator")
)

// Invariant violations. Fatal to the call, the caller must correct the input.
const (
	DuplicateSeries           = ErrorKind("series id already exists")
	InvalidMetadata           = ErrorKind("invalid series metadata")
	RoyaltyLimitExceeded      = ErrorKind("royalty limit exceeded")
	PriceOutOfRange           = ErrorKind("price out of range")
	NoSuchSeries              = ErrorKind("series does not exist")
	NotMintable               = ErrorKind("series is not mintable")
	SeriesNotMintable         = ErrorKind("cannot mint from series")
	CannotDecreaseBelowMinted = ErrorKind("cannot decrease copies below minted count")
	AlreadyNonMintable        = ErrorKind("series is already non-mintable")
	UseDecreaseInstead        = ErrorKind("capped series must be closed by decreasing copies")
	InvalidFee                = ErrorKind("invalid fee")
	ActivationInPast          = ErrorKind("fee activation time is in the past")
	PayeeCountExceedsLimit    = ErrorKind("payee count exceeds limit")
)

// Resource and exhaustion errors.
const (
	// InsufficientDeposit is returned when the attached value does not cover
	// the storage cost (plus price, on purchase paths) of the operation.
	InsufficientDeposit = ErrorKind("insufficient attached deposit")

	// PoolExhausted is returned when every index of the draw pool has been drawn.
	PoolExhausted = ErrorKind("draw pool exhausted")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}
