// Package apperr defines the error taxonomy shared by the ingestion pipeline.
//
// Every failure surfaced by the client, normalizer or stores is an *Error with
// a Kind. Callers match kinds with errors.Is against the exported sentinels:
//
//	if errors.Is(err, apperr.ErrDataUnavailable) { ... }
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindParse
	KindDataUnavailable
	KindValidation
	KindStoreUnavailable
	KindStoreWrite
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindParse:
		return "parse error"
	case KindDataUnavailable:
		return "data unavailable"
	case KindValidation:
		return "validation error"
	case KindStoreUnavailable:
		return "store unavailable"
	case KindStoreWrite:
		return "store write error"
	default:
		return "unknown error"
	}
}

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrNetwork          = &Error{Kind: KindNetwork}
	ErrParse            = &Error{Kind: KindParse}
	ErrDataUnavailable  = &Error{Kind: KindDataUnavailable}
	ErrValidation       = &Error{Kind: KindValidation}
	ErrStoreUnavailable = &Error{Kind: KindStoreUnavailable}
	ErrStoreWrite       = &Error{Kind: KindStoreWrite}
)

// Error is a classified pipeline failure.
type Error struct {
	Kind   Kind
	Op     string // operation that failed, e.g. "alphavantage.daily"
	Symbol string // optional
	Msg    string
	Err    error // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Symbol != "" {
		msg += " [" + e.Symbol + "]"
	}
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, op string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: cause}
}

func Network(op string, cause error, format string, args ...any) *Error {
	return newf(KindNetwork, op, cause, format, args...)
}

func Parse(op string, cause error, format string, args ...any) *Error {
	return newf(KindParse, op, cause, format, args...)
}

func DataUnavailable(op string, format string, args ...any) *Error {
	return newf(KindDataUnavailable, op, nil, format, args...)
}

func Validation(op string, cause error, format string, args ...any) *Error {
	return newf(KindValidation, op, cause, format, args...)
}

func StoreUnavailable(op string, cause error, format string, args ...any) *Error {
	return newf(KindStoreUnavailable, op, cause, format, args...)
}

func StoreWrite(op string, cause error, format string, args ...any) *Error {
	return newf(KindStoreWrite, op, cause, format, args...)
}

// WithSymbol tags err with symbol if it is an *Error without one.
func WithSymbol(err error, symbol string) error {
	if e, ok := err.(*Error); ok && e.Symbol == "" {
		cp := *e
		cp.Symbol = symbol
		return &cp
	}
	return err
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
