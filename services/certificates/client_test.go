package certsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/certificate"
	"github.com/nelc/eoxnelp/tests"
)

func validCertificate() certificate.External {
	return certificate.External{
		ID:             "124ABC",
		ReferenceID:    "1222555888~course-v1:FutureX+guide+2023",
		CreatedAt:      "2024-01-15",
		ExpirationDate: "2025-01-14",
		Grade:          10,
		IsPassing:      true,
		GroupCode:      "ABC123",
		User:           certificate.ExternalUser{NationalID: "1222555888", EnglishName: " Testing", ArabicName: "اختبارات"},
	}
}

func TestClient_CreateExternalCertificate(t *testing.T) {
	var gotBody certificate.External
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/certificates", r.URL.Path)
		user, pwd, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "nelp", user)
		assert.Equal(t, "secret", pwd)
		assert.Equal(t, "ABC123", r.Header.Get("HTTP_CUSTOM_HEADER"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": {"success": true, "message": "successful", "code": 1}}`))
	}))
	defer srv.Close()

	client := NewClient(core.CertificatesConfig{
		BaseURL:      srv.URL,
		User:         "nelp",
		Password:     "secret",
		ExtraHeaders: map[string]string{"HTTP_CUSTOM_HEADER": "ABC123"},
	}, testutil.NewLogger())
	assert.Equal(t, "ABC123", client.Header("HTTP_CUSTOM_HEADER"))

	resp, err := client.CreateExternalCertificate(context.Background(), validCertificate())
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{
		"status": map[string]interface{}{"success": true, "message": "successful", "code": float64(1)},
	}, resp)
	assert.Equal(t, validCertificate(), gotBody)
}

func TestClient_CreateExternalCertificate_missingFields(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { calls++ }))
	defer srv.Close()

	client := NewClient(core.CertificatesConfig{BaseURL: srv.URL}, testutil.NewLogger())
	_, err := client.CreateExternalCertificate(context.Background(), certificate.External{})
	assert.Equal(t, certificate.ErrMissingField, errors.Cause(err))
	assert.Zero(t, calls)
}

func TestClient_CreateExternalCertificate_upstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	logger := testutil.NewLogger()
	client := NewClient(core.CertificatesConfig{BaseURL: srv.URL}, logger)
	_, err := client.CreateExternalCertificate(context.Background(), validCertificate())
	assert.Error(t, err)
	assert.True(t, logger.Contains("ERROR", "answered 502"))
}
