// Package tns resolves IAU transient names against the Transient Name
// Server. The TNS object endpoint expects a multipart form with an api_key
// field and a JSON query in a data field, plus a tns_marker User-Agent.
package tns

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"gonuclear/domain/core"
	"gonuclear/internal/config"
	"gonuclear/internal/errors"
)

// Client queries the TNS object endpoint. Implements ports.NameResolver.
type Client struct {
	httpClient *http.Client
	cfg        config.TNSConfig
}

// New creates a TNS client with the given credentials.
func New(cfg config.TNSConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
	}
}

type objectQuery struct {
	ObjName    string `json:"objname"`
	Photometry string `json:"photometry"`
	TNSID      string `json:"tns_id"`
	Type       string `json:"type"`
	Name       string `json:"name"`
}

type objectResponse struct {
	Data      *objectData `json:"data"`
	IDMessage string      `json:"id_message"`
}

type objectData struct {
	RADeg         *float64 `json:"radeg"`
	DecDeg        *float64 `json:"decdeg"`
	InternalNames string   `json:"internal_names"`
}

// Resolve returns the TNS position in degrees for an IAU name, along with
// the first ZTF cross-identification found in internal_names (empty when
// there is none). Leading "AT" / "AT_" prefixes are stripped from the name.
func (c *Client) Resolve(ctx context.Context, name string) (float64, float64, string, error) {
	if !c.cfg.HasCredentials() {
		return 0, 0, "", errors.ConfigInvalid("TNS credentials are not configured")
	}
	name = normalizeName(name)
	if name == "" {
		return 0, 0, "", core.NewValidationError("name", "must not be empty")
	}

	body, contentType, err := c.buildForm(name)
	if err != nil {
		return 0, 0, "", errors.Wrap(err, "failed to build TNS request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/object", body)
	if err != nil {
		return 0, 0, "", errors.Wrap(err, "failed to build TNS request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", fmt.Sprintf(
		`tns_marker{"tns_id":%s, "type":"bot", "name":"%s"}`, c.cfg.TNSID, c.cfg.Username))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, 0, "", errors.ExternalServiceError("TNS", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, 0, "", errors.ExternalServiceError("TNS", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, 0, "", errors.ExternalServiceError("TNS",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))))
	}

	var parsed objectResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0, 0, "", errors.ExternalServiceError("TNS", err)
	}
	if parsed.Data == nil || parsed.Data.RADeg == nil || parsed.Data.DecDeg == nil {
		return 0, 0, "", core.NewNotFoundError("transient", name)
	}

	return *parsed.Data.RADeg, *parsed.Data.DecDeg, firstZTFName(parsed.Data.InternalNames), nil
}

func (c *Client) buildForm(name string) (*bytes.Buffer, string, error) {
	query, err := json.Marshal(objectQuery{
		ObjName:    name,
		Photometry: "0",
		TNSID:      c.cfg.TNSID,
		Type:       "user",
		Name:       c.cfg.Username,
	})
	if err != nil {
		return nil, "", err
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	if err := form.WriteField("api_key", c.cfg.APIKey); err != nil {
		return nil, "", err
	}
	if err := form.WriteField("data", string(query)); err != nil {
		return nil, "", err
	}
	if err := form.Close(); err != nil {
		return nil, "", err
	}
	return body, form.FormDataContentType(), nil
}

func normalizeName(name string) string {
	if strings.HasPrefix(name, "AT_") {
		return name[3:]
	}
	if strings.HasPrefix(name, "AT") {
		return name[2:]
	}
	return name
}

func firstZTFName(internalNames string) string {
	for _, part := range strings.Split(internalNames, ",") {
		if trimmed := strings.TrimSpace(part); strings.HasPrefix(trimmed, "ZTF") {
			return trimmed
		}
	}
	return ""
}
