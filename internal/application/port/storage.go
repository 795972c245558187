package port

import "context"

// FileStorage files exported documents below a base directory
type FileStorage interface {
	// Save writes content atomically, replacing any file already at path
	Save(ctx context.Context, path string, content []byte) error
	GetFullPath(relativePath string) string
}
