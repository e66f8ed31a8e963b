// Package panstarrs retrieves PS1 stack cutout images for report figures.
// Two round trips: the filename service maps a position to a stack FITS
// file, then fitscut extracts the cutout around the position.
package panstarrs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"gonuclear/domain/core"
	"gonuclear/internal/errors"
)

// PlateScaleArcsecPerPixel is the PS1 stack pixel scale.
const PlateScaleArcsecPerPixel = 0.25

// Client fetches PS1 cutouts. Implements ports.CutoutService.
type Client struct {
	httpClient *http.Client
	baseURL    string
	filter     string
}

// New creates a PS1 cutout client for the given base URL
// (e.g. https://ps1images.stsci.edu/cgi-bin). Cutouts use the r band.
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    baseURL,
		filter:     "r",
	}
}

// Cutout downloads a FITS cutout covering sizeArcsec on a side, centered on
// (ra, dec) degrees.
func (c *Client) Cutout(ctx context.Context, ra, dec, sizeArcsec float64) ([]byte, error) {
	if sizeArcsec <= 0 {
		return nil, core.NewValidationError("sizeArcsec",
			fmt.Sprintf("must be > 0, got %v", sizeArcsec))
	}

	filename, err := c.stackFilename(ctx, ra, dec)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("ra", strconv.FormatFloat(ra, 'f', -1, 64))
	params.Set("dec", strconv.FormatFloat(dec, 'f', -1, 64))
	params.Set("size", strconv.Itoa(int(sizeArcsec/PlateScaleArcsecPerPixel)))
	params.Set("format", "fits")
	params.Set("red", filename)

	return c.get(ctx, c.baseURL+"/fitscut.cgi?"+params.Encode())
}

// stackFilename asks the PS1 filename service which stack file covers the
// position. The service answers a whitespace table with a header row; the
// filename column of the first data row names the file.
func (c *Client) stackFilename(ctx context.Context, ra, dec float64) (string, error) {
	params := url.Values{}
	params.Set("ra", strconv.FormatFloat(ra, 'f', -1, 64))
	params.Set("dec", strconv.FormatFloat(dec, 'f', -1, 64))
	params.Set("filters", c.filter)

	raw, err := c.get(ctx, c.baseURL+"/ps1filenames.py?"+params.Encode())
	if err != nil {
		return "", err
	}

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) < 2 {
		return "", core.NewNotFoundError("PS1 stack image at", fmt.Sprintf("%.6f %.6f", ra, dec))
	}
	header := strings.Fields(lines[0])
	row := strings.Fields(lines[1])
	for i, col := range header {
		if col == "filename" && i < len(row) {
			return row[i], nil
		}
	}
	return "", errors.ExternalServiceError("PanSTARRS",
		fmt.Errorf("filename column missing in filename-service response"))
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build PanSTARRS request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ExternalServiceError("PanSTARRS", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.ExternalServiceError("PanSTARRS",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return io.ReadAll(resp.Body)
}
