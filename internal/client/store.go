package client

import (
	"context"
	"errors"
)

// ErrNoState is returned by a StateStore when nothing is stored under a key.
var ErrNoState = errors.New("client: no stored state")

// StateStore is a key/value blob store for client state.
type StateStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}
