package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/gateway"
	"github.com/rogelioGuerrero/dte-pro-sub002/internal/model"
)

func signedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func staticTokens(token string) *gateway.TokenCache {
	return gateway.NewTokenCache(gateway.TokenSourceFunc(func(context.Context) (string, error) {
		return token, nil
	}), 0)
}

func TestSigner_Sign(t *testing.T) {
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/firmardocumento/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]string{"status": "OK", "body": "eyJhbGciOi.signed.envelope"})
	}))
	defer srv.Close()

	signer := gateway.NewHTTPSigner(srv.URL)
	envelope, err := signer.Sign(context.Background(), gateway.SignRequest{
		IssuerTaxID: "06141234567890",
		Credential:  "s3cret",
		Document:    model.Document{},
	})

	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.signed.envelope", envelope)
	assert.Equal(t, "06141234567890", gotPayload["nit"])
	assert.Equal(t, "s3cret", gotPayload["passwordPri"])
}

func TestSigner_Rejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ERROR", "code": "103", "message": "certificado no activo",
		})
	}))
	defer srv.Close()

	signer := gateway.NewHTTPSigner(srv.URL)
	_, err := signer.Sign(context.Background(), gateway.SignRequest{Credential: "s3cret"})

	require.Error(t, err)
	var wf *model.WorkflowError
	require.ErrorAs(t, err, &wf)
	assert.Equal(t, model.FailureSigning, wf.Kind)
	assert.Equal(t, "103", wf.Code)
	assert.False(t, wf.Retryable)
}

func TestSigner_HTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	signer := gateway.NewHTTPSigner(srv.URL)
	_, err := signer.Sign(context.Background(), gateway.SignRequest{})

	require.Error(t, err)
	var wf *model.WorkflowError
	require.ErrorAs(t, err, &wf)
	assert.Equal(t, "HTTP_500", wf.Code)
}

func TestSigner_WakeRetriesColdStart(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	signer := gateway.NewHTTPSigner(srv.URL, gateway.WithWakePolicy(5, time.Millisecond))

	require.NoError(t, signer.Wake(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestSigner_WakeGivesUp(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	signer := gateway.NewHTTPSigner(srv.URL, gateway.WithWakePolicy(2, time.Millisecond))

	err := signer.Wake(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not wake")
}

func TestTokenCache_ReusesUnexpiredToken(t *testing.T) {
	var fetches atomic.Int32
	token := signedJWT(t, time.Now().Add(1*time.Hour))
	cache := gateway.NewTokenCache(gateway.TokenSourceFunc(func(context.Context) (string, error) {
		fetches.Add(1)
		return token, nil
	}), 0)

	for i := 0; i < 3; i++ {
		got, err := cache.Token(context.Background())
		require.NoError(t, err)
		assert.Equal(t, token, got)
	}
	assert.Equal(t, int32(1), fetches.Load())
}

func TestTokenCache_RefreshesWithinMargin(t *testing.T) {
	var fetches atomic.Int32
	cache := gateway.NewTokenCache(gateway.TokenSourceFunc(func(context.Context) (string, error) {
		fetches.Add(1)
		// Expires inside the refresh margin, so every call refetches.
		return signedJWT(t, time.Now().Add(30*time.Second)), nil
	}), time.Minute)

	_, err := cache.Token(context.Background())
	require.NoError(t, err)
	_, err = cache.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetches.Load())
}

func TestTokenCache_OpaqueTokenGetsFallbackLifetime(t *testing.T) {
	var fetches atomic.Int32
	cache := gateway.NewTokenCache(gateway.TokenSourceFunc(func(context.Context) (string, error) {
		fetches.Add(1)
		return "not-a-jwt", nil
	}), 0)

	_, err := cache.Token(context.Background())
	require.NoError(t, err)
	_, err = cache.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(1), fetches.Load())
}

func TestTokenCache_Invalidate(t *testing.T) {
	var fetches atomic.Int32
	cache := gateway.NewTokenCache(gateway.TokenSourceFunc(func(context.Context) (string, error) {
		fetches.Add(1)
		return signedJWT(t, time.Now().Add(1*time.Hour)), nil
	}), 0)

	_, err := cache.Token(context.Background())
	require.NoError(t, err)
	cache.Invalidate()
	_, err = cache.Token(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int32(2), fetches.Load())
}

func TestPasswordTokenSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/seguridad/auth", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "api-user", r.FormValue("user"))
		require.Equal(t, "api-pass", r.FormValue("pwd"))
		json.NewEncoder(w).Encode(map[string]any{
			"status": "OK",
			"body":   map[string]string{"token": "Bearer abc123"},
		})
	}))
	defer srv.Close()

	source := gateway.NewPasswordTokenSource(srv.URL, "api-user", "api-pass", srv.Client())
	token, err := source.FetchToken(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestTransmit_Accepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/fesv/recepciondte", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("Authorization"))

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "00", payload["ambiente"])
		assert.Equal(t, "signed-envelope", payload["documento"])

		json.NewEncoder(w).Encode(map[string]any{
			"estado":        "PROCESADO",
			"selloRecibido": "20268E4F2C1D",
		})
	}))
	defer srv.Close()

	tr := gateway.NewHTTPTransmitter(srv.URL, staticTokens("tok"))
	result, err := tr.Transmit(context.Background(), "signed-envelope", model.EnvironmentTest)

	require.NoError(t, err)
	assert.Equal(t, gateway.StatusAccepted, result.Status)
	assert.Equal(t, "20268E4F2C1D", result.ReceiptSeal)
	assert.Empty(t, result.Errors)
}

func TestTransmit_AcceptedWithObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"estado":        "PROCESADO",
			"selloRecibido": "20268E4F2C1D",
			"observaciones": []string{"actividad económica desactualizada"},
		})
	}))
	defer srv.Close()

	tr := gateway.NewHTTPTransmitter(srv.URL, staticTokens("tok"))
	result, err := tr.Transmit(context.Background(), "env", model.EnvironmentTest)

	require.NoError(t, err)
	assert.Equal(t, gateway.StatusAcceptedWithWarnings, result.Status)
	assert.Len(t, result.Warnings, 1)
}

func TestTransmit_Processing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"estado": "EN_PROCESO"})
	}))
	defer srv.Close()

	tr := gateway.NewHTTPTransmitter(srv.URL, staticTokens("tok"))
	result, err := tr.Transmit(context.Background(), "env", model.EnvironmentTest)

	require.NoError(t, err)
	assert.Equal(t, gateway.StatusProcessing, result.Status)
	assert.Empty(t, result.ReceiptSeal)
}

func TestTransmit_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"estado":         "RECHAZADO",
			"codigoMsg":      "92",
			"descripcionMsg": "NIT emisor no autorizado",
		})
	}))
	defer srv.Close()

	tr := gateway.NewHTTPTransmitter(srv.URL, staticTokens("tok"))
	result, err := tr.Transmit(context.Background(), "env", model.EnvironmentTest)

	require.NoError(t, err)
	assert.Equal(t, gateway.StatusRejected, result.Status)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "92")
}

func TestTransmit_ServerErrorIsCommunicationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := gateway.NewHTTPTransmitter(srv.URL, staticTokens("tok"))
	_, err := tr.Transmit(context.Background(), "env", model.EnvironmentTest)

	require.Error(t, err)
	assert.True(t, gateway.IsCommunicationFailure(err))
}

func TestTransmit_UnauthorizedInvalidatesToken(t *testing.T) {
	var fetches atomic.Int32
	tokens := gateway.NewTokenCache(gateway.TokenSourceFunc(func(context.Context) (string, error) {
		fetches.Add(1)
		return "not-a-jwt", nil
	}), 0)

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"estado": "PROCESADO", "selloRecibido": "SELLO"})
	}))
	defer srv.Close()

	tr := gateway.NewHTTPTransmitter(srv.URL, tokens)

	_, err := tr.Transmit(context.Background(), "env", model.EnvironmentTest)
	require.Error(t, err)
	assert.True(t, gateway.IsCommunicationFailure(err))

	// The retry re-authenticates because the stale token was dropped.
	result, err := tr.Transmit(context.Background(), "env", model.EnvironmentTest)
	require.NoError(t, err)
	assert.Equal(t, gateway.StatusAccepted, result.Status)
	assert.Equal(t, int32(2), fetches.Load())
}
