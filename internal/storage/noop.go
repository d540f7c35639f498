package storage

import "context"

// NoopUploader é usado quando não há bucket; quem chama mantém o payload inline.
type NoopUploader struct{}

func (NoopUploader) Upload(ctx context.Context, obj Object) (*Stored, error) {
	return nil, ErrNotConfigured
}
