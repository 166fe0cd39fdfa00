package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLoggerSetsRequestID(t *testing.T) {
	var inner http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}

	rec := httptest.NewRecorder()
	requestLogger(inner).ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusBadRequest, "customers is required")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"customers is required"}`, rec.Body.String())
}

func TestReadBatchBodyJSON(t *testing.T) {
	body := `{"customers":[{"customer_id":"C-1","age":44},{"customer_id":"C-2","age":51}]}`
	req := httptest.NewRequest("POST", "/api/score-batch", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	customers, err := readBatchBody(req)
	require.NoError(t, err)
	require.Len(t, customers, 2)
	assert.Equal(t, "C-2", customers[1].CustomerID)
}

func TestReadBatchBodyCSV(t *testing.T) {
	body := "customer_id,age,gender\nC-9,38.5,Female\n"
	req := httptest.NewRequest("POST", "/api/score-batch", strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")

	customers, err := readBatchBody(req)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "C-9", customers[0].CustomerID)
	assert.InDelta(t, 38.5, customers[0].Age, 1e-9)
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]int{"total": 3})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total":3}`, rec.Body.String())
}
