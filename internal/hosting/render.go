// Package hosting checks the deployment's service settings on the hosting
// provider's API (Render-style REST surface).
package hosting

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tsakani-green/envkeep/internal/report"
)

// Client talks to a Render-style service API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a client for the given API base and key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 20 * time.Second},
	}
}

// Service is the subset of the provider's service object the checks need.
type Service struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	RootDirectory string            `json:"rootDirectory"`
	EnvVars       map[string]string `json:"envVars"`
}

// GetService fetches the service object.
func (c *Client) GetService(ctx context.Context, serviceID string) (*Service, error) {
	url := fmt.Sprintf("%s/v1/services/%s", c.baseURL, serviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service fetch failed (%d): %s", resp.StatusCode, string(data))
	}

	var svc Service
	if err := json.Unmarshal(data, &svc); err != nil {
		return nil, fmt.Errorf("parse service: %w", err)
	}
	return &svc, nil
}

// CheckOptions configures a service settings check.
type CheckOptions struct {
	ServiceID    string
	WantRootDir  string   // expected rootDirectory; empty skips the check
	RequiredVars []string // env var names that must be set on the service
}

// Check fetches the service and verifies its settings.
func (c *Client) Check(ctx context.Context, opts CheckOptions) (*Service, *report.Report, error) {
	svc, err := c.GetService(ctx, opts.ServiceID)
	if err != nil {
		return nil, nil, err
	}

	rep := &report.Report{}

	if opts.WantRootDir != "" && trimSlashes(svc.RootDirectory) != trimSlashes(opts.WantRootDir) {
		rep.Add(report.SeverityWarning, "root_dir", "",
			fmt.Sprintf("rootDirectory is %q, expected %q", svc.RootDirectory, opts.WantRootDir))
	}

	if svc.EnvVars == nil {
		// The API does not expose env vars on every plan; say so rather
		// than reporting every var missing.
		rep.Add(report.SeverityInfo, "env_vars", "", "service env vars are not observable via the API; verify them in the dashboard")
	} else {
		for _, name := range opts.RequiredVars {
			if _, ok := svc.EnvVars[name]; !ok {
				rep.Add(report.SeverityError, "env_vars", name, "required env var is not set on the service")
			}
		}
	}

	return svc, rep, nil
}

func trimSlashes(s string) string {
	for len(s) > 0 && s[0] == '/' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
