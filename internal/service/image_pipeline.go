package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/tastegent/tastegent/internal/domain"
	"github.com/tastegent/tastegent/internal/infrastructure/adminclient"
)

// ImagePipeline runs the admin-side attach flow: crop, rasterize, upload,
// associate. The two network calls are not atomic: a stored file whose
// association fails stays orphaned, and the caller retries only the
// association step.
type ImagePipeline struct {
	raster *Rasterizer
	api    *adminclient.Client
}

// NewImagePipeline creates a new image pipeline
func NewImagePipeline(raster *Rasterizer, api *adminclient.Client) *ImagePipeline {
	return &ImagePipeline{
		raster: raster,
		api:    api,
	}
}

// AttachImage crops original per region (nil region skips cropping), uploads
// the result and binds its URL to the catalog entry. Rasterization failures
// are not fatal: the uncropped original is uploaded instead.
//
// Error identity tells the caller how far it got: adminclient.ErrUploadFailed
// means nothing was stored; adminclient.ErrAssociationFailed means the upload
// succeeded (the returned UploadResult is non-nil) and only the association
// needs to be re-run.
func (p *ImagePipeline) AttachImage(ctx context.Context, itemID, filename string, original []byte, region *domain.CropRegion) (*domain.UploadResult, error) {
	payload := original

	if region != nil {
		img, err := imaging.Decode(bytes.NewReader(original))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrNotAnImage, err)
		}

		rendered, err := p.raster.Render(img, *region)
		if err == nil {
			payload = rendered
		} else if !errors.Is(err, domain.ErrEmptyCrop) {
			return nil, err
		}
		// Empty crop: keep the original bytes.
	}

	result, err := p.api.Upload(ctx, filename, payload)
	if err != nil {
		return nil, err
	}

	if err := p.api.AssociateImage(ctx, itemID, result.URL); err != nil {
		// The upload went through; hand the result back so the caller can
		// retry just the association.
		return result, err
	}

	return result, nil
}

// Associate re-runs only the association step, for recovering from a failed
// AttachImage whose upload succeeded.
func (p *ImagePipeline) Associate(ctx context.Context, itemID, imageURL string) error {
	return p.api.AssociateImage(ctx, itemID, imageURL)
}
