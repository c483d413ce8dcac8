// Package testutil centralizes the shared test-fixture plumbing used
// across package boundaries: an in-memory Redis server for exercising
// internal/cache's read-through layer, and a go-vcr cassette client for
// recording/replaying the HTTP adapters under internal/provider/adapters.
package testutil

import (
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"
)

// NewRedisClient starts a miniredis instance for the duration of t and
// returns a client pointed at it. The server is stopped automatically
// via t.Cleanup.
func NewRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// NewCassetteClient returns an *http.Client backed by a go-vcr cassette
// at fixturePath (without the .yaml extension), replaying recorded
// interactions. The recorder is stopped automatically via t.Cleanup.
func NewCassetteClient(t *testing.T, fixturePath string) *http.Client {
	t.Helper()
	rec, err := recorder.New(fixturePath)
	if err != nil {
		t.Fatalf("testutil: opening cassette %q: %v", fixturePath, err)
	}
	t.Cleanup(func() { _ = rec.Stop() })
	return rec.GetDefaultClient()
}
