package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// uploadProof pushes a payment receipt to Cloudinary and returns the
// public URL. Receipts get a random public ID; nothing about the guest
// should be guessable from the asset path.
func (app *application) uploadProof(ctx context.Context, file io.Reader) (string, error) {
	publicID := fmt.Sprintf("receipt_%s", uuid.New().String())

	resp, err := app.cld.Upload.Upload(
		ctx,
		file,
		uploader.UploadParams{
			Folder:    "receipts",
			PublicID:  publicID,
			Overwrite: api.Bool(false),
		},
	)
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

func (app *application) deleteProofFromCloudinary(proofURL string) error {
	publicID, err := extractPublicIDFromURL(proofURL)
	if err != nil {
		return fmt.Errorf("failed to extract public ID: %w", err)
	}

	_, err = app.cld.Upload.Destroy(context.Background(), uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete receipt from Cloudinary: %w", err)
	}
	return nil
}

func extractPublicIDFromURL(proofURL string) (string, error) {
	parsedURL, err := url.Parse(proofURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	pathParts := strings.Split(parsedURL.Path, "/")
	for i, part := range pathParts {
		if part == "upload" && i+1 < len(pathParts) {
			return strings.Join(pathParts[i+1:], "/"), nil
		}
	}

	return "", errors.New("failed to extract public ID from URL")
}
