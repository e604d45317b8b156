// Package media consumes the external media host's admin API. Uploads and
// transformations happen client-side against the host directly; the backend
// only lists and deletes stored objects.
package media

import "context"

// ObjectRef identifies a stored object on the media host.
type ObjectRef struct {
	PublicID string `json:"public_id"`
}

// Host is the slice of the media host API used by the account purge.
type Host interface {
	// List returns every object stored under the given namespace prefix.
	List(ctx context.Context, namespace string) ([]ObjectRef, error)
	// DeleteMany removes the referenced objects in bulk.
	DeleteMany(ctx context.Context, refs []ObjectRef) error
}
