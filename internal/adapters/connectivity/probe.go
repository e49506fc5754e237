// Package connectivity implements online/offline detection against the
// record store endpoint.
package connectivity

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/example/fieldforms/internal/ports/secondary"
)

// OfflineEnv forces offline mode when set to a non-empty value. Field crews
// use it to stage work deliberately; tests use it to avoid the network.
const OfflineEnv = "FIELDFORMS_OFFLINE"

// Probe reports connectivity by issuing a cheap request against the record
// store endpoint. Any response at all counts as online; only transport
// failure counts as offline.
type Probe struct {
	baseURL    string
	httpClient *http.Client
}

// NewProbe creates a connectivity probe for the given endpoint.
func NewProbe(baseURL string) *Probe {
	return &Probe{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

// Online implements secondary.ConnectivityChecker.
func (p *Probe) Online(ctx context.Context) bool {
	if os.Getenv(OfflineEnv) != "" {
		return false
	}
	if p.baseURL == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.baseURL, nil)
	if err != nil {
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Ensure Probe implements the interface
var _ secondary.ConnectivityChecker = (*Probe)(nil)
