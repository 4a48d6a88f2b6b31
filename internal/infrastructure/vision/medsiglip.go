package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
)

const medSigLIPTarget = "medsiglip"

// MedSigLIPClient checks the local MedSigLIP classification service through its /health endpoint.
type MedSigLIPClient struct {
	baseURL string
	http    *http.Client
}

var _ repository.ConnectionTester = (*MedSigLIPClient)(nil)

func NewMedSigLIPClient(baseURL string, httpClient *http.Client) *MedSigLIPClient {
	if baseURL == "" {
		baseURL = "http://localhost:5001"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &MedSigLIPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type healthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	ModelLoaded bool   `json:"model_loaded"`
	Version     string `json:"version"`
}

func (c *MedSigLIPClient) TestConnection(ctx context.Context) (repository.ConnectionResult, error) {
	log.Printf("[MedSigLIP] 🏠 Checking %s/health...", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return repository.ConnectionResult{}, &repository.TransportError{Target: medSigLIPTarget, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return repository.ConnectionResult{}, &repository.TransportError{Target: medSigLIPTarget, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		reason := fmt.Sprintf("service returned status %d", resp.StatusCode)
		if msg := strings.TrimSpace(string(body)); msg != "" {
			reason += ": " + msg
		}
		return repository.Failed(reason), nil
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return repository.ConnectionResult{}, &repository.TransportError{
			Target: medSigLIPTarget,
			Err:    fmt.Errorf("failed to decode health response: %w", err),
		}
	}

	if health.Status != "healthy" {
		return repository.Failed(fmt.Sprintf("service status is %q", health.Status)), nil
	}
	if !health.ModelLoaded {
		return repository.Failed("model not loaded"), nil
	}

	model := health.Service
	if model == "" {
		model = "MedSigLIP"
	}
	if health.Version != "" {
		model += " v" + health.Version
	}

	log.Printf("[MedSigLIP] 🏠 %s is healthy.", model)
	return repository.Succeeded(model), nil
}

func (c *MedSigLIPClient) Name() string {
	return "MedSigLIP (" + c.baseURL + ")"
}
