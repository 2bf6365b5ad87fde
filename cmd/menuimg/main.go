package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/tastegent/tastegent/internal/domain"
	"github.com/tastegent/tastegent/internal/infrastructure/adminclient"
	"github.com/tastegent/tastegent/internal/service"
)

// menuimg attaches an image to a menu item: crop locally, upload, associate.
// Upload and association are separate phases; when only the association
// fails the stored URL is printed so the run can be resumed with
// -skip-upload -image-url.
func main() {
	var (
		apiURL   = flag.String("api", "http://localhost:8080", "Backend base URL")
		username = flag.String("username", os.Getenv("ADMIN_USERNAME"), "Admin username (defaults to ADMIN_USERNAME)")
		password = flag.String("password", os.Getenv("ADMIN_PASSWORD"), "Admin password (defaults to ADMIN_PASSWORD)")
		itemID   = flag.String("item", "", "Menu item ID to attach the image to")
		filePath = flag.String("file", "", "Path to the source image")

		cropUnit = flag.String("crop-unit", "%", "Crop unit: % or px")
		cropX    = flag.Float64("crop-x", -1, "Crop X origin")
		cropY    = flag.Float64("crop-y", -1, "Crop Y origin")
		cropW    = flag.Float64("crop-w", -1, "Crop width")
		cropH    = flag.Float64("crop-h", -1, "Crop height")
		aspect   = flag.Float64("aspect", 0, "Aspect ratio for the default centered crop (0 = free-form)")
		noCrop   = flag.Bool("no-crop", false, "Upload the image without cropping")

		skipUpload = flag.Bool("skip-upload", false, "Skip upload and only re-run the association")
		imageURL   = flag.String("image-url", "", "Stored image URL (required with -skip-upload)")
	)
	flag.Parse()

	if *itemID == "" {
		log.Fatal("-item is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client := adminclient.NewClient(*apiURL, "")
	if err := client.Authenticate(ctx, *username, *password); err != nil {
		log.Fatalf("Authentication failed: %v", err)
	}

	pipeline := service.NewImagePipeline(service.NewRasterizer(), client)

	if *skipUpload {
		if *imageURL == "" {
			log.Fatal("-image-url is required with -skip-upload")
		}
		if err := pipeline.Associate(ctx, *itemID, *imageURL); err != nil {
			log.Fatalf("Association failed: %v", err)
		}
		fmt.Printf("Associated %s with item %s\n", *imageURL, *itemID)
		return
	}

	if *filePath == "" {
		log.Fatal("-file is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *filePath, err)
	}

	region, err := resolveRegion(data, *noCrop, *cropUnit, *cropX, *cropY, *cropW, *cropH, *aspect)
	if err != nil {
		log.Fatalf("Failed to resolve crop region: %v", err)
	}

	result, err := pipeline.AttachImage(ctx, *itemID, filepath.Base(*filePath), data, region)
	if err != nil {
		if result != nil && errors.Is(err, adminclient.ErrAssociationFailed) {
			fmt.Fprintf(os.Stderr, "Upload succeeded but association failed: %v\n", err)
			fmt.Fprintf(os.Stderr, "Retry with: menuimg -item %s -skip-upload -image-url %s\n", *itemID, result.URL)
			os.Exit(1)
		}
		log.Fatalf("Upload failed, nothing was stored: %v", err)
	}

	fmt.Printf("Uploaded %s as %s\n", result.OriginalFilename, result.StoredFilename)
	fmt.Printf("Associated %s with item %s\n", result.URL, *itemID)
}

// resolveRegion turns the crop flags into a region. When no explicit
// geometry is given, a centered default is derived from the image size.
func resolveRegion(data []byte, noCrop bool, unit string, x, y, w, h, aspect float64) (*domain.CropRegion, error) {
	if noCrop {
		return nil, nil
	}

	if x >= 0 && y >= 0 && w > 0 && h > 0 {
		region := domain.CropRegion{
			Unit:   domain.CropUnit(unit),
			X:      x,
			Y:      y,
			Width:  w,
			Height: h,
		}
		return &region, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNotAnImage, err)
	}

	bounds := img.Bounds()
	region, ok := domain.ResolveInitialCrop(bounds.Dx(), bounds.Dy(), aspect)
	if !ok {
		// Degenerate image dimensions: no sensible default, upload as-is.
		return nil, nil
	}
	return &region, nil
}
