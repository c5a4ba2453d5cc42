package readthrough

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadThrough(t *testing.T) {
	rt := New(t.TempDir(), "mb-", time.Hour)

	_, _, err := rt.Get("https://example.com/a")
	assert.ErrorIs(t, err, ErrMiss)

	r, hash, err := rt.Set("https://example.com/a", io.NopCloser(strings.NewReader("hello")))
	require.NoError(t, err)
	bs, _ := io.ReadAll(r)
	assert.Equal(t, "hello", string(bs))
	assert.Len(t, hash, 64)

	r, _, err = rt.Get("https://example.com/a")
	require.NoError(t, err)
	bs, _ = io.ReadAll(r)
	r.Close()
	assert.Equal(t, "hello", string(bs))

	_, _, err = rt.Get("https://example.com/b")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestReadThroughExpires(t *testing.T) {
	rt := New(t.TempDir(), "", time.Hour)
	_, _, err := rt.Set("k", io.NopCloser(strings.NewReader("v")))
	require.NoError(t, err)

	rt.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = rt.Get("k")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestReadThroughDisabled(t *testing.T) {
	rt := New("", "", 0)
	assert.False(t, rt.Enabled())

	r, _, err := rt.Set("k", io.NopCloser(strings.NewReader("v")))
	require.NoError(t, err)
	bs, _ := io.ReadAll(r)
	assert.Equal(t, "v", string(bs))

	_, _, err = rt.Get("k")
	assert.ErrorIs(t, err, ErrMiss)
}
