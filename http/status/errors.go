package status

import "errors"

type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

// CodeOf returns the code carried by err, if it is (or wraps) an HTTPError. Any other error
// maps to 500.
func CodeOf(err error) Code {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return InternalServerError
}

var (
	ErrBadRequest           = NewError(BadRequest, "bad request")
	ErrInvalidRequest       = NewError(BadRequest, "invalid request")
	ErrMissingWebSocketKey  = NewError(BadRequest, "missing Sec-WebSocket-Key header")
	ErrHeaderFieldsTooLarge = NewError(RequestHeaderFieldsTooLarge, "too large headers section")
	ErrBodyTooLarge         = NewError(RequestEntityTooLarge, "request body is too large")
	ErrInternalServerError  = NewError(InternalServerError, "internal server error")
)
