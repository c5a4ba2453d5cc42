package request_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/amonks/artistgraph/request"
	"github.com/stretchr/testify/assert"
)

func response(code int, body string) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(body))}
}

func TestError(t *testing.T) {
	assert.NoError(t, request.Error(response(200, "ok")))
	assert.NoError(t, request.Error(response(204, "")))

	err := request.Error(response(403, "forbidden"))
	assert.Equal(t, 403, request.StatusCode(err))
	assert.Contains(t, err.Error(), "forbidden")

	wrapped := fmt.Errorf("fetch error: %w", err)
	assert.Equal(t, 403, request.StatusCode(wrapped))
	assert.False(t, request.Retryable(wrapped))
	assert.True(t, request.Retryable(request.Error(response(503, ""))))
	assert.Equal(t, 0, request.StatusCode(fmt.Errorf("plain")))
}
