package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// VirusTotalClient looks up file reports by sha1 against a VirusTotal v2
// compatible API.
type VirusTotalClient struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

var _ ReputationClient = (*VirusTotalClient)(nil)

// NewVirusTotalClient constructs a reputation client. An empty apiKey is
// accepted here; Lookup rejects it before any network call.
func NewVirusTotalClient(endpoint, apiKey string) *VirusTotalClient {
	return &VirusTotalClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		client:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// Lookup fetches the file report for the given sha1. A 204 (rate-limited
// empty response) or 404 yields a nil result without error.
func (v *VirusTotalClient) Lookup(ctx context.Context, sha1 string) (json.RawMessage, error) {
	if v.apiKey == "" {
		return nil, ErrMissingCredential
	}

	q := url.Values{}
	q.Set("apikey", v.apiKey)
	q.Set("resource", sha1)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint+"/file/report?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNoContent, http.StatusNotFound:
		return nil, nil
	default:
		return nil, fmt.Errorf("reputation service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}
