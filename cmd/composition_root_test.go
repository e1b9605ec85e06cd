package cmd_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bilbo/cmd"
	"bilbo/internal/core/application/usecases/queries"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompositionRoot_MemoryStorage(t *testing.T) {
	config, err := cmd.LoadConfig(env(map[string]string{"STORAGE": "memory"}))
	require.NoError(t, err)
	root := cmd.NewCompositionRoot(config, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	router, err := root.CreateRouter()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders",
		strings.NewReader(`{"kind":"PURCHASE","counterpartyId":"6f1c1f36-8d0c-4a8e-9a55-2f6c3b1f2a10"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "0d2a6d38-51a4-4f0e-8f84-bf3c6a9c5d11")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	handler := root.CreateAuditAllocationsQueryHandler()
	result, err := handler.Handle(t.Context(), queries.NewAuditAllocationsQuery())
	require.NoError(t, err)
	assert.Equal(t, 1, result.OrdersChecked)
	assert.Empty(t, result.Violations)

	jm := root.CreateJobManager()
	require.NoError(t, jm.StartAll())
	jm.StopAll()

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "bilbo_orders_created_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
