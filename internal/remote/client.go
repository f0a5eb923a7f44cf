package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	sserrors "github.com/stateset/stateset/internal/errors"
	"github.com/stateset/stateset/pkg/types"
)

// Client talks to the StateSet API over HTTP.
type Client struct {
	baseURL    string
	token      string
	orgID      string
	httpClient *http.Client
}

// ClientConfig holds connection settings for the API client.
type ClientConfig struct {
	BaseURL string
	Token   string
	OrgID   string
	Timeout time.Duration
}

// NewClient creates an API client. A zero timeout defaults to 60 seconds;
// exports of large organizations are slow.
func NewClient(config ClientConfig) *Client {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    config.BaseURL,
		token:      config.Token,
		orgID:      config.OrgID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type exportRequest struct {
	OrgID          string `json:"orgId"`
	IncludeSecrets bool   `json:"includeSecrets"`
}

type importRequest struct {
	OrgID  string           `json:"orgId"`
	Bundle *types.OrgExport `json:"bundle"`
	DryRun bool             `json:"dryRun"`
	Strict bool             `json:"strict"`
}

// ExportCurrentState implements Service.
func (c *Client) ExportCurrentState(ctx context.Context, includeSecrets bool) (*types.OrgExport, error) {
	var bundle types.OrgExport
	err := c.post(ctx, "/v1/state/export", exportRequest{
		OrgID:          c.orgID,
		IncludeSecrets: includeSecrets,
	}, &bundle)
	if err != nil {
		return nil, err
	}
	bundle.Normalize()
	return &bundle, nil
}

// ImportState implements Service.
func (c *Client) ImportState(ctx context.Context, bundle *types.OrgExport, opts types.ImportOptions) (*types.ImportResult, error) {
	var result types.ImportResult
	err := c.post(ctx, "/v1/state/import", importRequest{
		OrgID:  c.orgID,
		Bundle: bundle,
		DryRun: opts.DryRun,
		Strict: opts.Strict,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Created == nil {
		result.Created = make(map[string]int)
	}
	return &result, nil
}

func (c *Client) post(ctx context.Context, path string, body any, target any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return sserrors.Newf(sserrors.ErrorTypeNetwork, "request to %s failed", path).
			WithCause(err.Error()).
			WithSolutions("Check api.base_url in your configuration", "Verify network connectivity")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return sserrors.Newf(sserrors.ErrorTypeNetwork, "%s returned %d", path, resp.StatusCode).
			WithCause(string(detail)).
			WithSolutions("Check your API token and organization id")
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return sserrors.Newf(sserrors.ErrorTypeFormat, "invalid response from %s", path).
			WithCause(err.Error())
	}
	return nil
}
