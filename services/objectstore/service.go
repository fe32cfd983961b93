package storesvc

import "context"

// Service is any service that can durably store a byte buffer under a path
// and hand back a public URL for it.
type Service interface {
	Put(ctx context.Context, path string, data []byte, contentType string) (url string, err error)
}
