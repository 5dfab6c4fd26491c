package store

import "context"

// Store persists one opaque envelope string per session. Reads of an absent
// key return the empty string without error; last write wins.
type Store interface {
	Read(ctx context.Context) (string, error)
	Write(ctx context.Context, envelope string) error
	Clear(ctx context.Context) error
}
