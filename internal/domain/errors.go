package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrTransientFetch    = errors.New("transient fetch failure")
	ErrMalformedResponse = errors.New("malformed response")
	ErrUnknownExchange   = errors.New("unknown exchange")
)

// FetchError describes why a single quote fetch failed. Kind is one of
// ErrTransientFetch or ErrMalformedResponse.
type FetchError struct {
	Exchange Exchange
	Symbol   string
	Kind     error
	Err      error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Exchange, e.Symbol, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Exchange, e.Symbol, e.Kind, e.Err)
}

// Unwrap exposes both the failure kind and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Transient reports whether err is a network, timeout or status failure.
func Transient(err error) bool {
	return errors.Is(err, ErrTransientFetch)
}

// Malformed reports whether err is a response-shape failure.
func Malformed(err error) bool {
	return errors.Is(err, ErrMalformedResponse)
}

// UnknownExchangeError is returned when a name does not match any exchange.
type UnknownExchangeError struct {
	Name string
}

func (e *UnknownExchangeError) Error() string {
	return fmt.Sprintf("unknown exchange %q", e.Name)
}

func (e *UnknownExchangeError) Unwrap() error { return ErrUnknownExchange }
