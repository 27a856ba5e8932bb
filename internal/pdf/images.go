package pdf

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // registers the JPEG decoder for DecodeConfig
	_ "image/png"  // registers the PNG decoder for DecodeConfig
	"io"
	"net/http"
	"time"

	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
)

const maxImageBytes = 8 << 20

// ErrUnsupportedImage is returned for anything that is not a JPEG or PNG.
var ErrUnsupportedImage = errors.New("pdf: unsupported image")

// ImageFetcher downloads a remote image for embedding.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, extension.Type, error)
}

// HTTPImageFetcher fetches images over HTTP with a fixed timeout.
type HTTPImageFetcher struct {
	client *http.Client
}

// NewHTTPImageFetcher builds a fetcher; timeout bounds each download.
func NewHTTPImageFetcher(timeout time.Duration) *HTTPImageFetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPImageFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPImageFetcher) Fetch(ctx context.Context, url string) ([]byte, extension.Type, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("pdf: image status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("pdf: image larger than %d bytes", maxImageBytes)
	}
	ext, err := Sniff(data)
	if err != nil {
		return nil, "", err
	}
	return data, ext, nil
}

// Sniff checks that data decodes as JPEG or PNG and returns the matching extension.
func Sniff(data []byte) (extension.Type, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	switch format {
	case "jpeg":
		return extension.Jpg, nil
	case "png":
		return extension.Png, nil
	default:
		return "", ErrUnsupportedImage
	}
}
