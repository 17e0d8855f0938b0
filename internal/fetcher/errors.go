package fetcher

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fetch failure.
type ErrorKind int

// Fetch failure kinds.
const (
	// KindInvalidURL means the URL could not be parsed or uses an
	// unsupported scheme.
	KindInvalidURL ErrorKind = iota

	// KindTimeout means the request exceeded its deadline.
	KindTimeout

	// KindConnectionFailed means the connection could not be established
	// or broke mid-transfer.
	KindConnectionFailed

	// KindHTTPStatus means the server responded with a 4xx or 5xx status.
	KindHTTPStatus

	// KindTooManyRedirects means the redirect limit was exceeded.
	KindTooManyRedirects

	// KindContentTooLarge means the response body exceeded the configured
	// byte cap.
	KindContentTooLarge
)

// errRedirectLimit is the sentinel returned from CheckRedirect; client.Do
// wraps it in a *url.Error, so classification uses errors.Is.
var errRedirectLimit = errors.New("redirect limit exceeded")

// Error is a typed fetch failure.
type Error struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// URL is the requested URL.
	URL string

	// StatusCode is set for KindHTTPStatus.
	StatusCode int

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Reason(), e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Reason())
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Reason returns the stable short form recorded in page and image statuses.
// The format is part of the output contract; reports and tests rely on it.
func (e *Error) Reason() string {
	switch e.Kind {
	case KindInvalidURL:
		return "InvalidUrl"
	case KindTimeout:
		return "Timeout"
	case KindConnectionFailed:
		return "ConnectionFailed"
	case KindHTTPStatus:
		return fmt.Sprintf("HttpStatus:%d", e.StatusCode)
	case KindTooManyRedirects:
		return "TooManyRedirects"
	case KindContentTooLarge:
		return "ContentTooLarge"
	default:
		return "Unknown"
	}
}

// Reason extracts the stable reason string from any error.
// Non-fetch errors fall back to "ConnectionFailed" so that statuses stay
// machine-readable even for unexpected failures.
func Reason(err error) string {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Reason()
	}
	return "ConnectionFailed"
}
