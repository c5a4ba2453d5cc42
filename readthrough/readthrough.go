// Package readthrough caches upstream response bodies on disk, keyed by
// request URL.
package readthrough

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// New returns a cache rooted at dir whose entries expire after ttl. An empty
// dir disables the cache: every Get misses and Set passes the body through.
// A zero ttl never expires.
func New(dir, prefix string, ttl time.Duration) *ReadThrough {
	return &ReadThrough{dir: dir, prefix: prefix, ttl: ttl, now: time.Now}
}

type ReadThrough struct {
	dir, prefix string
	ttl         time.Duration
	now         func() time.Time
}

var ErrMiss = errors.New("cache miss")

func (rt *ReadThrough) Enabled() bool {
	return rt != nil && rt.dir != ""
}

func (rt *ReadThrough) Get(key string) (io.ReadCloser, string, error) {
	if !rt.Enabled() {
		return nil, "", ErrMiss
	}
	hash, filename := rt.hashAndFilename(key)

	info, err := os.Stat(filename)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, hash, fmt.Errorf("error checking for cache file '%s': %w", hash, err)
	} else if err != nil {
		return nil, hash, fmt.Errorf("cache miss for '%s': %w", hash, ErrMiss)
	}
	if rt.ttl > 0 && rt.now().Sub(info.ModTime()) > rt.ttl {
		return nil, hash, fmt.Errorf("stale cache file '%s': %w", hash, ErrMiss)
	}

	cache, err := os.Open(filename)
	if err != nil {
		return nil, hash, fmt.Errorf("error opening cache file '%s' for read: %w", hash, err)
	}

	return cache, hash, nil
}

// Set stores r's contents under key and returns a reader over the same
// bytes. r is always closed.
func (rt *ReadThrough) Set(key string, r io.ReadCloser) (io.ReadCloser, string, error) {
	defer r.Close()
	if !rt.Enabled() {
		bs, err := io.ReadAll(r)
		if err != nil {
			return nil, "", fmt.Errorf("error reading body: %w", err)
		}
		return io.NopCloser(bytes.NewReader(bs)), "", nil
	}
	hash, filename := rt.hashAndFilename(key)

	if err := os.MkdirAll(rt.dir, 0o755); err != nil {
		return nil, hash, fmt.Errorf("error creating cache dir '%s': %w", rt.dir, err)
	}
	cache, err := os.Create(filename)
	if err != nil {
		return nil, hash, fmt.Errorf("error opening cache file '%s' for write: %w", hash, err)
	}
	defer cache.Close()

	var buf bytes.Buffer
	tee := io.TeeReader(r, cache)
	if _, err := io.Copy(&buf, tee); err != nil {
		os.Remove(filename)
		return nil, hash, fmt.Errorf("error writing cache file '%s': %w", hash, err)
	}

	return io.NopCloser(&buf), hash, nil
}

func (rt *ReadThrough) hashAndFilename(key string) (string, string) {
	var hasher = sha256.New()
	hasher.Write([]byte(key))
	hash := hex.EncodeToString(hasher.Sum(nil))
	return hash, filepath.Join(rt.dir, rt.prefix+hash)
}
