package status

import "strconv"

type (
	Code   uint16
	Status string
)

// Codes the server is able to produce by itself. Responses composed by a producer may carry any
// code, those are written verbatim and never pass through here.
const (
	SwitchingProtocols Code = 101 // RFC 9110, 15.2.2

	OK Code = 200 // RFC 9110, 15.3.1

	BadRequest                  Code = 400 // RFC 9110, 15.5.1
	NotFound                    Code = 404 // RFC 9110, 15.5.5
	RequestEntityTooLarge       Code = 413 // RFC 9110, 15.5.14
	RequestHeaderFieldsTooLarge Code = 431 // RFC 6585, 5

	InternalServerError Code = 500 // RFC 9110, 15.6.1
	ServiceUnavailable  Code = 503 // RFC 9110, 15.6.4
)

// KnownCodes lists every code having its own status text.
var KnownCodes = []Code{
	SwitchingProtocols, OK, BadRequest, NotFound, RequestEntityTooLarge,
	RequestHeaderFieldsTooLarge, InternalServerError, ServiceUnavailable,
}

// Text returns a text for the HTTP status code.
func Text(code Code) Status {
	switch code {
	case SwitchingProtocols:
		return "Switching Protocols"
	case OK:
		return "OK"
	case BadRequest:
		return "Bad Request"
	case NotFound:
		return "Not Found"
	case RequestEntityTooLarge:
		return "Request Entity Too Large"
	case RequestHeaderFieldsTooLarge:
		return "Request Header Fields Too Large"
	case InternalServerError:
		return "Internal Server Error"
	case ServiceUnavailable:
		return "Service Unavailable"
	default:
		return "Unknown Status Code"
	}
}

// StringCode returns the decimal representation of the code.
func StringCode(code Code) string {
	return strconv.Itoa(int(code))
}
