package port

import "context"

// FileStore is the injected storage-transfer capability used to archive
// artifacts. The core never shells out to a transfer tool; any distributed
// file store can sit behind this interface.
type FileStore interface {
	// Put copies a local file to remote, overwriting any existing copy.
	Put(ctx context.Context, local, remote string) error

	// Exists reports whether path is present in the store.
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the names of entries directly under path.
	List(ctx context.Context, path string) ([]string, error)
}
