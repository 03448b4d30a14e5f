// Package tei embeds text through a Hugging Face text-embeddings-inference
// server's /embed endpoint.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rohanmhetar/failsight/internal/config"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// Sentinel errors for TEI failures.
var (
	ErrUnreachable = errors.New("tei unreachable")
	ErrTimeout     = errors.New("tei request timeout")
	ErrBadResponse = errors.New("tei returned invalid response")
)

const dims = 384

// Provider implements models.Embedder against a TEI server.
type Provider struct {
	cfg    config.TEIConfig
	client *http.Client
}

func NewProvider(cfg config.TEIConfig, timeout time.Duration) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *Provider) Name() string { return "tei" }

func (p *Provider) Dims() int { return dims }

type embedRequest struct {
	Inputs []string `json:"inputs"`
}

func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	body, err := json.Marshal(embedRequest{Inputs: texts})
	if err != nil {
		return nil, fmt.Errorf("encoding embed request: %w", err)
	}

	u := p.cfg.BaseURL + "/embed"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts",
			ErrBadResponse, len(vectors), len(texts))
	}
	return vectors, nil
}

func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

var _ models.Embedder = (*Provider)(nil)
