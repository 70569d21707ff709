// Package storage removes uploaded media from Cloudinary once the database
// stops referencing it. Uploads happen client-side; the API only ever deletes.
package storage

import (
	"context"
	"fmt"
	"regexp"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/placium/places-api/internal/config"
)

// publicIDPattern extracts the public id from a Cloudinary delivery URL,
// skipping the optional version segment and dropping the format extension.
var publicIDPattern = regexp.MustCompile(`/upload/(?:v\d+/)?(.+)\.[a-zA-Z0-9]+$`)

// Cloudinary implements service.MediaStorage
type Cloudinary struct {
	client *cloudinary.Cloudinary
}

// New creates a Cloudinary storage client
func New(cfg config.MediaConfig) (*Cloudinary, error) {
	client, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary client: %w", err)
	}
	return &Cloudinary{client: client}, nil
}

// Delete removes the object behind a delivery URL. URLs that don't look like
// Cloudinary delivery URLs are ignored.
func (c *Cloudinary) Delete(ctx context.Context, url string) error {
	publicID := PublicID(url)
	if publicID == "" {
		return nil
	}

	_, err := c.client.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return fmt.Errorf("failed to destroy %s: %w", publicID, err)
	}
	return nil
}

// DeleteByPrefix removes every object under a folder prefix. Cloudinary has
// no folder delete, so assets are removed by prefix match.
func (c *Cloudinary) DeleteByPrefix(ctx context.Context, prefix string) error {
	_, err := c.client.Admin.DeleteAssetsByPrefix(ctx, admin.DeleteAssetsByPrefixParams{
		Prefix: api.CldAPIArray{prefix},
	})
	if err != nil {
		return fmt.Errorf("failed to delete assets under %s: %w", prefix, err)
	}
	return nil
}

// PublicID extracts the public id from a delivery URL, or "" if the URL is
// not a Cloudinary delivery URL
func PublicID(url string) string {
	match := publicIDPattern.FindStringSubmatch(url)
	if match == nil {
		return ""
	}
	return match[1]
}
