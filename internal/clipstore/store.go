// Package clipstore persists extracted speaker clips and hands back
// retrievable references. Backends: local disk, Supabase Storage.
package clipstore

import "context"

// Store saves bytes under a name and returns a stable reference that later
// resolves to the same bytes (a URL or path). Clip bytes written through a
// Store outlive the request that produced them.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}
