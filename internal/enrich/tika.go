package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// TikaClient extracts structured content and metadata from a payload via an
// Apache Tika server's recursive metadata endpoint.
type TikaClient struct {
	endpoint string
	client   *http.Client
}

var _ DocumentExtractor = (*TikaClient)(nil)

// NewTikaClient constructs a client for the given Tika server base URL.
// Outbound calls are traced via the otelhttp transport.
func NewTikaClient(endpoint string) *TikaClient {
	return &TikaClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

// Extract submits the payload and returns Tika's JSON response verbatim.
func (t *TikaClient) Extract(ctx context.Context, data []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.endpoint+"/rmeta/text", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("tika returned invalid JSON")
	}
	return body, nil
}
