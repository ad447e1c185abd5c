package listing

import (
	"errors"
	"fmt"
)

// InvalidInputError is returned when the input is empty or not an absolute http(s) URL
type InvalidInputError struct {
	Input  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid url %q", e.Input)
	}
	return fmt.Sprintf("invalid url %q: %s", e.Input, e.Reason)
}

// Empty reports whether the input was missing altogether
func (e *InvalidInputError) Empty() bool {
	return e.Input == ""
}

// UnsupportedPlatformError is returned when no registered platform matches the URL
type UnsupportedPlatformError struct {
	URL string
}

func (e *UnsupportedPlatformError) Error() string {
	return "unsupported platform: " + e.URL
}

// FetchError is returned when the listing page could not be retrieved.
// Status is 0 when the request never produced a response (network failure, timeout).
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0 && e.Err != nil:
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	default:
		return "fetch " + e.URL + ": failed"
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// UserMessage maps an error to the short Norwegian message shown to end users
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		if invalid.Empty() {
			return "URL er påkrevd"
		}
		return "Ugyldig URL-format"
	}

	var unsupported *UnsupportedPlatformError
	if errors.As(err, &unsupported) {
		return "Ukjent plattform. Støtter kun Finn.no og Tise."
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		if fetchErr.Status == 0 {
			return "Kunne ikke hente annonsen"
		}
		return fmt.Sprintf("Kunne ikke hente annonsen: %d", fetchErr.Status)
	}

	return "En ukjent feil oppstod"
}
