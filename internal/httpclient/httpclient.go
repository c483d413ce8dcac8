// Package httpclient builds the single process-wide *http.Client every
// outbound adapter shares, constructed once and threaded into every
// provider constructor rather than letting each adapter build its own.
package httpclient

import (
	"net/http"
	"time"
)

// Config tunes the shared transport. Zero values fall back to the
// defaults below.
type Config struct {
	Timeout             time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration
}

func (c Config) withDefaults() Config {
	if c.Timeout == 0 {
		c.Timeout = 15 * time.Second
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 200
	}
	if c.MaxIdleConnsPerHost == 0 {
		// High relative to the default of 2: many adapters share this
		// one client against a handful of distinct upstream hosts, so
		// keep-alives per host matter more than total idle connections.
		c.MaxIdleConnsPerHost = 50
	}
	if c.IdleConnTimeout == 0 {
		c.IdleConnTimeout = 90 * time.Second
	}
	return c
}

// New builds the shared *http.Client. Call once at process startup and
// pass the result to every adapter constructor.
func New(cfg Config) *http.Client {
	cfg = cfg.withDefaults()
	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   cfg.Timeout,
	}
}
