// Package store persists settings as opaque values addressed by key.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNotFound is returned by Load when no value is stored under the key.
var ErrNotFound = errors.New("key not found")

// Store is a key/value persistence service.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open returns the store for a location:
//
//	memory:                  in-process only, nothing survives the process
//	sqlite://path/to/db      SQLite database file
//	postgres://user@host/db  PostgreSQL (postgresql:// works too)
//	anything else            YAML file path
//
// Writes and reads are retried with DefaultRetryConfig.
func Open(ctx context.Context, location string, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var s Store
	var err error
	switch {
	case location == "memory:":
		s = NewMemory()
	case strings.HasPrefix(location, "sqlite://"):
		s, err = NewSQLite(strings.TrimPrefix(location, "sqlite://"))
	case strings.HasPrefix(location, "postgres://"), strings.HasPrefix(location, "postgresql://"):
		s, err = NewPostgres(ctx, location)
	case location == "":
		return nil, fmt.Errorf("empty store location")
	default:
		s, err = NewFile(location)
	}
	if err != nil {
		return nil, err
	}

	logger.Debug("opened settings store", "location", redact(location))
	return WithRetry(s, DefaultRetryConfig(), logger), nil
}

// redact hides the password of a connection URL
func redact(location string) string {
	scheme, rest, ok := strings.Cut(location, "://")
	if !ok {
		return location
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return location
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return location
	}
	return scheme + "://" + user + ":xxxxx@" + host
}
