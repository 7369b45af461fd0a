package storage

import (
	"context"
	"os"
)

// Local reads files from the local filesystem.
type Local struct{}

// Get ignores bucket and reads the file at key.
func (Local) Get(_ context.Context, _, key string) ([]byte, error) {
	return os.ReadFile(key)
}
