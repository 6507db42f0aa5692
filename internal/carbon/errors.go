package carbon

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidOverride is returned when a factor override is negative, NaN or infinite.
const ErrInvalidOverride = constError("invalid emission factor override")
