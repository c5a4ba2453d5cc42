// Package request holds small helpers shared by the HTTP clients.
package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (err *StatusError) Error() string {
	return fmt.Sprintf("http status code %d from '%s': %s", err.StatusCode, err.URL, err.Body)
}

// Error checks the given http response for an error code, and, if one is
// present, reads the body and returns a *StatusError.
func Error(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	var url string
	if resp.Request != nil && resp.Request.URL != nil {
		url = resp.Request.URL.String()
	}
	bs, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return &StatusError{StatusCode: resp.StatusCode, URL: url, Body: fmt.Sprintf("error reading body: %s", err)}
	}
	return &StatusError{StatusCode: resp.StatusCode, URL: url, Body: string(bs)}
}

// StatusCode returns the status code carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// Retryable reports whether err is a server-side failure worth retrying.
func Retryable(err error) bool {
	code := StatusCode(err)
	return code >= 500 && code < 600
}
