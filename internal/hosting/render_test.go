package hosting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsakani-green/envkeep/internal/report"
)

func newTestServer(t *testing.T, status int, svc *Service) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/v1/services/srv-123", r.URL.Path)
		w.WriteHeader(status)
		if svc != nil {
			json.NewEncoder(w).Encode(svc)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetService(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, &Service{
		ID:            "srv-123",
		Name:          "backend",
		RootDirectory: "app",
	})

	client := NewClient(srv.URL, "test-key")
	svc, err := client.GetService(context.Background(), "srv-123")
	require.NoError(t, err)
	assert.Equal(t, "backend", svc.Name)
	assert.Equal(t, "app", svc.RootDirectory)
}

func TestGetService_NotOK(t *testing.T) {
	srv := newTestServer(t, http.StatusUnauthorized, nil)

	client := NewClient(srv.URL, "test-key")
	_, err := client.GetService(context.Background(), "srv-123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCheck_AllGood(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, &Service{
		ID:            "srv-123",
		RootDirectory: "app/",
		EnvVars:       map[string]string{"FRONTEND_URL": "x", "CORS_ORIGINS": "y"},
	})

	client := NewClient(srv.URL, "test-key")
	_, rep, err := client.Check(context.Background(), CheckOptions{
		ServiceID:    "srv-123",
		WantRootDir:  "app",
		RequiredVars: []string{"FRONTEND_URL", "CORS_ORIGINS"},
	})
	require.NoError(t, err)
	assert.True(t, rep.OK(true), "findings: %+v", rep.Findings)
}

func TestCheck_RootDirMismatch(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, &Service{
		ID:            "srv-123",
		RootDirectory: "backend",
		EnvVars:       map[string]string{},
	})

	client := NewClient(srv.URL, "test-key")
	_, rep, err := client.Check(context.Background(), CheckOptions{
		ServiceID:   "srv-123",
		WantRootDir: "app",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Warnings())
}

func TestCheck_MissingEnvVars(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, &Service{
		ID:      "srv-123",
		EnvVars: map[string]string{"FRONTEND_URL": "x"},
	})

	client := NewClient(srv.URL, "test-key")
	_, rep, err := client.Check(context.Background(), CheckOptions{
		ServiceID:    "srv-123",
		RequiredVars: []string{"FRONTEND_URL", "CORS_ORIGINS"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, rep.Errors())
	assert.Equal(t, "CORS_ORIGINS", rep.Findings[0].Key)
}

func TestCheck_EnvVarsNotObservable(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, &Service{ID: "srv-123"})

	client := NewClient(srv.URL, "test-key")
	_, rep, err := client.Check(context.Background(), CheckOptions{
		ServiceID:    "srv-123",
		RequiredVars: []string{"FRONTEND_URL"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, rep.Errors())

	require.Len(t, rep.Findings, 1)
	assert.Equal(t, report.SeverityInfo, rep.Findings[0].Severity)
}
