package storage

import (
	"context"

	"job-portal-backend/internal/domain"
)

// PlaceholderUploader stands in when no bucket is configured: every asset
// resolves to the same URL.
type PlaceholderUploader struct {
	URL string
}

var _ domain.AssetUploader = PlaceholderUploader{}

func (p PlaceholderUploader) Upload(ctx context.Context, folder string, asset *domain.Asset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.URL, nil
}
