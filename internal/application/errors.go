package application

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can branch without matching messages.
type Kind string

const (
	KindInvalidArgument     Kind = "invalid_argument"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindConfiguration       Kind = "configuration_error"
	KindStorage             Kind = "storage_error"
	KindInternal            Kind = "internal"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrConfiguration       = errors.New("configuration error")
	ErrStorage             = errors.New("storage error")
	ErrInternal            = errors.New("internal error")
)

type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrStorage) and friends match on kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindUpstreamUnavailable:
		return ErrUpstreamUnavailable
	case KindConfiguration:
		return ErrConfiguration
	case KindStorage:
		return ErrStorage
	default:
		return ErrInternal
	}
}

// E builds a typed error. An err that already carries a kind keeps it.
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf reports the kind carried by err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

// ParseKind reports the Kind named by s, for kinds carried across process
// boundaries.
func ParseKind(s string) (Kind, bool) {
	switch k := Kind(s); k {
	case KindInvalidArgument, KindUpstreamUnavailable, KindConfiguration, KindStorage, KindInternal:
		return k, true
	}
	return "", false
}
