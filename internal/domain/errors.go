package domain

import "errors"

// ErrorKind classifies pipeline failures
type ErrorKind int

const (
	ErrorNone ErrorKind = iota
	ErrorEncode
	ErrorNetwork
	ErrorDecode
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorNone:
		return "none"
	case ErrorEncode:
		return "encode_error"
	case ErrorNetwork:
		return "network_error"
	case ErrorDecode:
		return "decode_error"
	default:
		return "unknown"
	}
}

// Sentinel errors, wrapped with detail by the components that raise them
var (
	ErrEncode  = errors.New("encode error")
	ErrNetwork = errors.New("network error")
	ErrDecode  = errors.New("decode error")
)

// KindOf maps an error to its kind. Unclassified errors count as network errors
// since they can only come from the gateway side of the pipeline.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorNone
	case errors.Is(err, ErrEncode):
		return ErrorEncode
	case errors.Is(err, ErrDecode):
		return ErrorDecode
	default:
		return ErrorNetwork
	}
}
