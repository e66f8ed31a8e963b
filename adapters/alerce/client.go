// Package alerce reads ZTF objects and their detection histories from the
// Alerce broker's HTTP API.
package alerce

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"gonuclear/domain/core"
	"gonuclear/internal/errors"
	"gonuclear/ports"
)

// DefaultConeRadiusArcsec is the cone-search acceptance radius used when the
// caller does not override it.
const DefaultConeRadiusArcsec = 3.0

// Client queries the Alerce ZTF API. Implements ports.DetectionSource.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New creates an Alerce client for the given base URL
// (e.g. https://api.alerce.online/ztf/v1).
func New(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
	}
}

type objectListResponse struct {
	Items []objectItem `json:"items"`
}

type objectItem struct {
	OID      string  `json:"oid"`
	MeanRA   float64 `json:"meanra"`
	MeanDec  float64 `json:"meandec"`
	SigmaRA  float64 `json:"sigmara"`
	SigmaDec float64 `json:"sigmadec"`
	NDet     int     `json:"ndet"`
}

type detectionItem struct {
	MJD float64 `json:"mjd"`
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
}

// ObjectAt cone-searches for the nearest object within radiusArcsec of
// (ra, dec) degrees and returns its ZTF object id.
func (c *Client) ObjectAt(ctx context.Context, ra, dec, radiusArcsec float64) (string, error) {
	if radiusArcsec <= 0 {
		radiusArcsec = DefaultConeRadiusArcsec
	}
	params := url.Values{}
	params.Set("ra", strconv.FormatFloat(ra, 'f', -1, 64))
	params.Set("dec", strconv.FormatFloat(dec, 'f', -1, 64))
	params.Set("radius", strconv.FormatFloat(radiusArcsec, 'f', -1, 64))

	var parsed objectListResponse
	if err := c.getJSON(ctx, "/objects?"+params.Encode(), &parsed); err != nil {
		return "", err
	}
	if len(parsed.Items) == 0 {
		return "", core.NewNotFoundError("object near", fmt.Sprintf("%.6f %.6f", ra, dec))
	}
	return parsed.Items[0].OID, nil
}

// Detections returns all measured positions of the object in degrees.
func (c *Client) Detections(ctx context.Context, objectID string) ([]float64, []float64, error) {
	var items []detectionItem
	if err := c.getJSON(ctx, "/objects/"+url.PathEscape(objectID)+"/detections", &items); err != nil {
		return nil, nil, err
	}
	if len(items) == 0 {
		return nil, nil, core.NewNotFoundError("detections for object", objectID)
	}

	ras := make([]float64, len(items))
	decs := make([]float64, len(items))
	for i, d := range items {
		ras[i] = d.RA
		decs[i] = d.Dec
	}
	return ras, decs, nil
}

// Object returns the aggregate catalog summary for the object.
func (c *Client) Object(ctx context.Context, objectID string) (ports.ObjectSummary, error) {
	var item objectItem
	if err := c.getJSON(ctx, "/objects/"+url.PathEscape(objectID), &item); err != nil {
		return ports.ObjectSummary{}, err
	}
	if item.OID == "" {
		return ports.ObjectSummary{}, core.NewNotFoundError("object", objectID)
	}
	return ports.ObjectSummary{
		ObjectID:   item.OID,
		MeanRA:     item.MeanRA,
		MeanDec:    item.MeanDec,
		SigmaRA:    item.SigmaRA,
		SigmaDec:   item.SigmaDec,
		Detections: item.NDet,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to build Alerce request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.ExternalServiceError("Alerce", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return core.NewNotFoundError("Alerce resource", path)
	}
	if resp.StatusCode != http.StatusOK {
		return errors.ExternalServiceError("Alerce",
			fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.ExternalServiceError("Alerce", err)
	}
	return nil
}
