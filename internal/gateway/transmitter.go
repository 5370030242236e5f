package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

// DefaultTransmitTimeout bounds a single reception call. No call is
// allowed to block indefinitely.
const DefaultTransmitTimeout = 45 * time.Second

// HTTPTransmitter delivers signed envelopes to the authority's reception
// endpoint. Authentication tokens come from an injectable TokenCache.
type HTTPTransmitter struct {
	baseURL string
	client  *http.Client
	tokens  *TokenCache
	logger  *zap.Logger
}

// TransmitterOption configures the transmitter.
type TransmitterOption func(*HTTPTransmitter)

// WithTransmitterHTTPClient sets a custom HTTP client.
func WithTransmitterHTTPClient(c *http.Client) TransmitterOption {
	return func(t *HTTPTransmitter) { t.client = c }
}

// WithTransmitterTimeout sets the per-call timeout.
func WithTransmitterTimeout(d time.Duration) TransmitterOption {
	return func(t *HTTPTransmitter) { t.client.Timeout = d }
}

// WithTransmitterLogger sets the logger.
func WithTransmitterLogger(l *zap.Logger) TransmitterOption {
	return func(t *HTTPTransmitter) { t.logger = l }
}

// NewHTTPTransmitter creates a transmitter for the given authority base
// URL, drawing tokens from the supplied cache.
func NewHTTPTransmitter(baseURL string, tokens *TokenCache, opts ...TransmitterOption) *HTTPTransmitter {
	t := &HTTPTransmitter{
		baseURL: baseURL,
		client:  &http.Client{Timeout: DefaultTransmitTimeout},
		tokens:  tokens,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewPasswordTokenSource builds a TokenSource that authenticates against
// the authority with API credentials and returns the bearer token.
func NewPasswordTokenSource(baseURL, user, password string, client *http.Client) TokenSource {
	if client == nil {
		client = &http.Client{Timeout: DefaultTransmitTimeout}
	}
	return TokenSourceFunc(func(ctx context.Context) (string, error) {
		form := url.Values{}
		form.Set("user", user)
		form.Set("pwd", password)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/seguridad/auth",
			strings.NewReader(form.Encode()))
		if err != nil {
			return "", fmt.Errorf("failed to create auth request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := client.Do(req)
		if err != nil {
			return "", fmt.Errorf("authority auth failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("authority auth returned status %d", resp.StatusCode)
		}

		var parsed struct {
			Status string `json:"status"`
			Body   struct {
				Token string `json:"token"`
			} `json:"body"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return "", fmt.Errorf("failed to decode auth response: %w", err)
		}
		if parsed.Body.Token == "" {
			return "", fmt.Errorf("authority auth returned no token")
		}
		return strings.TrimPrefix(parsed.Body.Token, "Bearer "), nil
	})
}

type receptionPayload struct {
	Environment model.Environment `json:"ambiente"`
	SendID      int               `json:"idEnvio"`
	Version     int               `json:"version"`
	Document    string            `json:"documento"`
}

type receptionResponse struct {
	State          string   `json:"estado"`
	ReceiptSeal    string   `json:"selloRecibido"`
	Classification string   `json:"clasificaMsg"`
	MessageCode    string   `json:"codigoMsg"`
	Message        string   `json:"descripcionMsg"`
	Observations   []string `json:"observaciones"`
}

// Transmit delivers the signed envelope. Authority-side verdicts come back
// as a TransmitResult; transport-level faults (connectivity, timeout, 5xx)
// come back as a retryable communication error. Classification is by
// response content, not HTTP status alone.
func (t *HTTPTransmitter) Transmit(ctx context.Context, envelope string, env model.Environment) (*TransmitResult, error) {
	token, err := t.tokens.Token(ctx)
	if err != nil {
		return nil, model.NewCommunicationError("could not obtain authority token", err)
	}

	payload, err := json.Marshal(receptionPayload{
		Environment: env,
		SendID:      1,
		Version:     2,
		Document:    envelope,
	})
	if err != nil {
		return nil, model.NewCommunicationError("failed to encode reception payload", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/fesv/recepciondte", bytes.NewReader(payload))
	if err != nil {
		return nil, model.NewCommunicationError("failed to create reception request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, model.NewCommunicationError("authority unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewCommunicationError("failed to read reception response", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Stale token; drop it so the retry path re-authenticates.
		t.tokens.Invalidate()
		return nil, model.NewCommunicationError("authority token expired", nil)
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, model.NewCommunicationError(
			fmt.Sprintf("authority returned status %d", resp.StatusCode), nil)
	}

	var parsed receptionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, model.NewCommunicationError("failed to decode reception response", err)
	}

	result := classify(parsed)
	t.logger.Debug("transmission classified",
		zap.String("estado", parsed.State),
		zap.String("status", string(result.Status)))
	return result, nil
}

// classify maps the authority's verdict fields onto the status enum.
func classify(resp receptionResponse) *TransmitResult {
	result := &TransmitResult{
		ReceiptSeal: resp.ReceiptSeal,
		Warnings:    resp.Observations,
	}

	switch strings.ToUpper(resp.State) {
	case "PROCESADO":
		if len(resp.Observations) > 0 {
			result.Status = StatusAcceptedWithWarnings
		} else {
			result.Status = StatusAccepted
		}
	case "EN_PROCESO", "PROCESANDO":
		result.Status = StatusProcessing
	default:
		result.Status = StatusRejected
		if resp.Message != "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", resp.MessageCode, resp.Message))
		}
		result.Errors = append(result.Errors, resp.Observations...)
		result.Warnings = nil
	}
	return result
}

// IsCommunicationFailure reports whether err is a retryable transport
// fault as opposed to an authority verdict.
func IsCommunicationFailure(err error) bool {
	var wf *model.WorkflowError
	if errors.As(err, &wf) {
		return wf.Kind == model.FailureCommunication
	}
	return false
}
