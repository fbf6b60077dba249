package internal

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when a user, detail record or stored object
	// doesn't exist. It's terminal and never retried.
	ErrNotFound = statusErr(http.StatusNotFound)

	// ErrInvalidInput rejects malformed keys and IDs before we touch the cache
	// or the network.
	ErrInvalidInput = statusErr(http.StatusBadRequest)

	// ErrUpstream wraps network and parse failures from external services.
	ErrUpstream = statusErr(http.StatusBadGateway)

	// ErrIO is returned by storage backends for anything other than a missing
	// object.
	ErrIO = statusErr(http.StatusInternalServerError)

	errMissingUser = errors.Join(fmt.Errorf("please provide a user name"), ErrInvalidInput)
	errMissingASIN = errors.Join(fmt.Errorf("invalid asin"), ErrInvalidInput)
	errEmptyBinary = errors.Join(fmt.Errorf("refusing to store empty payload"), ErrInvalidInput)
)

type statusErr int

var _ error = (*statusErr)(nil)

// Status returns the HTTP status code this error corresponds to.
func (s statusErr) Status() int {
	return int(s)
}

func (s statusErr) Error() string {
	return fmt.Sprintf("HTTP %d", s)
}

// ioErr tags err as a storage failure.
func ioErr(op, path string, err error) error {
	return errors.Join(fmt.Errorf("%s %q: %w", op, path, err), ErrIO)
}

// notFound tags a missing storage object.
func notFound(path string) error {
	return errors.Join(fmt.Errorf("%q does not exist", path), ErrNotFound)
}
