package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

// Default signer configuration.
const (
	DefaultSignerTimeout   = 30 * time.Second
	DefaultWakeAttempts    = 5
	DefaultWakeBackoffBase = 500 * time.Millisecond
)

// HTTPSigner calls the external signing service over HTTP.
type HTTPSigner struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger

	wakeAttempts int
	wakeBackoff  time.Duration
}

// SignerOption configures the signer.
type SignerOption func(*HTTPSigner)

// WithSignerHTTPClient sets a custom HTTP client.
func WithSignerHTTPClient(c *http.Client) SignerOption {
	return func(s *HTTPSigner) { s.client = c }
}

// WithSignerTimeout sets the per-call timeout.
func WithSignerTimeout(d time.Duration) SignerOption {
	return func(s *HTTPSigner) { s.client.Timeout = d }
}

// WithSignerLogger sets the logger.
func WithSignerLogger(l *zap.Logger) SignerOption {
	return func(s *HTTPSigner) { s.logger = l }
}

// WithWakePolicy tunes the cold-start probe.
func WithWakePolicy(attempts int, backoffBase time.Duration) SignerOption {
	return func(s *HTTPSigner) {
		s.wakeAttempts = attempts
		s.wakeBackoff = backoffBase
	}
}

// NewHTTPSigner creates a signer adapter for the given base URL.
func NewHTTPSigner(baseURL string, opts ...SignerOption) *HTTPSigner {
	s := &HTTPSigner{
		baseURL:      baseURL,
		client:       &http.Client{Timeout: DefaultSignerTimeout},
		logger:       zap.NewNop(),
		wakeAttempts: DefaultWakeAttempts,
		wakeBackoff:  DefaultWakeBackoffBase,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type signPayload struct {
	TaxID      string         `json:"nit"`
	Credential string         `json:"passwordPri"`
	Document   model.Document `json:"dteJson"`
}

type signResponse struct {
	Status  string `json:"status"`
	Body    string `json:"body"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Wake probes the signing service before first use. Free-tier signer
// deployments cold-start and answer 502/503/504 until warm, so the probe
// retries those with exponential backoff.
func (s *HTTPSigner) Wake(ctx context.Context) error {
	backoff := s.wakeBackoff
	var lastErr error

	for attempt := 0; attempt < s.wakeAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/status", nil)
		if err != nil {
			return fmt.Errorf("failed to create wake request: %w", err)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			lastErr = fmt.Errorf("signer not ready: status %d", resp.StatusCode)
			s.logger.Debug("signer wake retry", zap.Int("attempt", attempt+1), zap.Int("status", resp.StatusCode))
			continue
		default:
			return nil
		}
	}

	return fmt.Errorf("signer did not wake after %d attempts: %w", s.wakeAttempts, lastErr)
}

// Sign submits the normalized document for signing and returns the opaque
// signed envelope.
func (s *HTTPSigner) Sign(ctx context.Context, req SignRequest) (string, error) {
	payload, err := json.Marshal(signPayload{
		TaxID:      req.IssuerTaxID,
		Credential: req.Credential,
		Document:   req.Document,
	})
	if err != nil {
		return "", model.NewSigningError("ENCODE", "failed to encode signing request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/firmardocumento/", bytes.NewReader(payload))
	if err != nil {
		return "", model.NewSigningError("REQUEST", "failed to create signing request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", model.NewSigningError("UNREACHABLE", "signing service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", model.NewSigningError("READ", "failed to read signing response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", model.NewSigningError(fmt.Sprintf("HTTP_%d", resp.StatusCode),
			fmt.Sprintf("signing service returned status %d", resp.StatusCode), nil)
	}

	var parsed signResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", model.NewSigningError("DECODE", "failed to decode signing response", err)
	}

	if parsed.Status != "OK" || parsed.Body == "" {
		code := parsed.Code
		if code == "" {
			code = "REJECTED"
		}
		msg := parsed.Message
		if msg == "" {
			msg = parsed.Body
		}
		return "", model.NewSigningError(code, fmt.Sprintf("signing rejected: %s", msg), nil)
	}

	s.logger.Debug("document signed",
		zap.String("codigoGeneracion", req.Document.Identification.GenerationCode))

	return parsed.Body, nil
}
