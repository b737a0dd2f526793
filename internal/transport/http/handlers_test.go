package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "housingcli/internal/errors"
	"housingcli/internal/exporter"
	"housingcli/internal/services"
	"housingcli/pkg/contracts/domain"
)

type fakeReader struct {
	rows      []domain.AffordabilityRow
	series    map[string][]domain.MonthlySummary
	manifest  *exporter.Manifest
	err       error
	lastQuery services.AffordabilityQuery
}

func (f *fakeReader) Affordability(_ context.Context, q services.AffordabilityQuery) ([]domain.AffordabilityRow, error) {
	f.lastQuery = q
	return f.rows, f.err
}

func (f *fakeReader) Areas(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []string
	for area := range f.series {
		out = append(out, area)
	}
	return out, nil
}

func (f *fakeReader) AreaMonthly(_ context.Context, area string) ([]domain.MonthlySummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.series[area]
	if !ok {
		return nil, apperrors.NewNotFoundError(area, services.ErrAreaNotFound)
	}
	return s, nil
}

func (f *fakeReader) Manifest(context.Context) (*exporter.Manifest, error) {
	return f.manifest, f.err
}

type fakeHealth struct{}

func (fakeHealth) HealthCheck(context.Context) services.HealthStatus {
	return services.HealthStatus{Status: "ok", Version: "test"}
}

func serve(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *apperrors.APIError {
	t.Helper()
	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.False(t, body.Success)
	return body.Error
}

func TestGetAffordability_Query(t *testing.T) {
	reader := &fakeReader{rows: []domain.AffordabilityRow{{Area: "Ashford", MedianPrice: 300000, PassesDTI: true}}}
	router := NewArtifactHandler(reader, nil).Routes()

	tests := []struct {
		name      string
		target    string
		status    int
		errorCode string
		query     services.AffordabilityQuery
	}{
		{"defaults", "/affordability", http.StatusOK, "", services.AffordabilityQuery{}},
		{"passing and limit", "/affordability?passing=true&limit=5", http.StatusOK, "", services.AffordabilityQuery{PassingOnly: true, Limit: 5}},
		{"bad passing", "/affordability?passing=maybe", http.StatusBadRequest, "INVALID_PARAMETER", services.AffordabilityQuery{}},
		{"negative limit", "/affordability?limit=-1", http.StatusBadRequest, "INVALID_PARAMETER", services.AffordabilityQuery{}},
		{"non-numeric limit", "/affordability?limit=ten", http.StatusBadRequest, "INVALID_PARAMETER", services.AffordabilityQuery{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader.lastQuery = services.AffordabilityQuery{}
			rec := serve(t, router, tt.target)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			if tt.errorCode != "" {
				assert.Equal(t, tt.errorCode, decodeError(t, rec).ErrorCode)
				return
			}
			assert.Equal(t, tt.query, reader.lastQuery)

			var body struct {
				Count int                       `json:"count"`
				Data  []domain.AffordabilityRow `json:"data"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, 1, body.Count)
			assert.Equal(t, "Ashford", body.Data[0].Area)
		})
	}
}

func TestGetAffordability_EmptyIsArray(t *testing.T) {
	rec := serve(t, NewArtifactHandler(&fakeReader{}, nil).Routes(), "/affordability")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"data":[]}`, rec.Body.String())
}

func TestArtifactHandler_ServiceErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		errorCode string
	}{
		{"missing artifact", apperrors.NewNotFoundError("affordability.csv", nil), http.StatusNotFound, "ARTIFACT_NOT_FOUND"},
		{"unreadable artifact", apperrors.NewStorageError("disk", fmt.Errorf("io")), http.StatusInternalServerError, "ARTIFACT_UNREADABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewArtifactHandler(&fakeReader{err: tt.err}, nil).Routes()
			for _, target := range []string{"/affordability", "/areas", "/areas/Ashford/monthly", "/manifest"} {
				rec := serve(t, router, target)
				assert.Equal(t, tt.status, rec.Code, target)
				assert.Equal(t, tt.errorCode, decodeError(t, rec).ErrorCode, target)
			}
		})
	}
}

func TestGetAreaMonthly(t *testing.T) {
	jan := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	reader := &fakeReader{series: map[string][]domain.MonthlySummary{
		"Ashford": {
			{MonthKey: jan, Area: "Ashford", SalesCount: 4, MedianSaleAmount: domain.Float(250000)},
			{MonthKey: jan.AddDate(0, 1, 0), Area: "Ashford", SalesCount: 2, MoM: domain.Float(0.1)},
		},
	}}
	router := NewArtifactHandler(reader, nil).Routes()

	rec := serve(t, router, "/areas/Ashford/monthly")
	require.Equal(t, http.StatusOK, rec.Code)

	var body AreaMonthlyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Ashford", body.Area)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "2023-01", body.Months[0].Month)
	assert.Equal(t, "2023-02", body.Months[1].Month)
	assert.Nil(t, body.Months[0].MoM)
	assert.InDelta(t, 0.1, *body.Months[1].MoM, 1e-9)

	rec = serve(t, router, "/areas/Nowhere/monthly")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).ErrorCode)
}

func TestGetManifest_LastModified(t *testing.T) {
	generated := time.Date(2024, time.March, 5, 14, 30, 0, 0, time.UTC)
	reader := &fakeReader{manifest: &exporter.Manifest{RunID: "run-1", GeneratedAt: generated}}

	rec := serve(t, NewArtifactHandler(reader, nil).Routes(), "/manifest")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Tue, 05 Mar 2024 14:30:00 GMT", rec.Header().Get("Last-Modified"))
	assert.Contains(t, rec.Body.String(), `"run_id":"run-1"`)
}

func TestHealthCheck(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/healthz", NewHealthHandler(fakeHealth{}, nil).HealthCheck)

	rec := serve(t, r, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status.Status)
}
