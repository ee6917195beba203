package errors

// baseError is embedded by every domain error type. It carries the pieces
// common to all of them: the underlying cause, a message, a code, and a
// lazily-allocated bag of structured details.
type baseError struct {
	cause   error
	message string
	code    ErrorCode
	details map[string]any
}

// NewBaseError constructs a baseError from a cause, code, and message.
func NewBaseError(err error, code ErrorCode, msg string) *baseError {
	return &baseError{cause: err, code: code, message: msg}
}

// WithMessage replaces the error message.
func (be *baseError) WithMessage(msg string) *baseError {
	be.message = msg
	return be
}

// WithCode replaces the error code.
func (be *baseError) WithCode(code ErrorCode) *baseError {
	be.code = code
	return be
}

// WithDetail attaches a key/value pair to the error's details map,
// allocating the map on first use.
func (be *baseError) WithDetail(key string, value any) *baseError {
	if be.details == nil {
		be.details = make(map[string]any)
	}
	be.details[key] = value
	return be
}

// Error implements the error interface.
func (b *baseError) Error() string {
	return b.message
}

// Unwrap returns the wrapped cause, so errors.Is/errors.As see through it.
func (b *baseError) Unwrap() error {
	return b.cause
}

// Code returns the error's classification code.
func (b *baseError) Code() ErrorCode {
	return b.code
}

// Details returns the error's structured detail map. Callers should treat
// the returned map as read-only.
func (b *baseError) Details() map[string]any {
	return b.details
}
