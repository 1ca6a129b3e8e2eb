package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveSubmission(t *testing.T) {
	before := SubmissionCount("accepted")
	ObserveSubmission("accepted")
	ObserveSubmission("accepted")
	assert.Equal(t, before+2, SubmissionCount("accepted"))
}

func TestHandler_ExposesCollectors(t *testing.T) {
	ObserveHTTP(http.MethodGet, "/health", http.StatusOK, 3*time.Millisecond)
	ObserveFormChange("create", nil)
	ObserveFormChange("delete", errors.New("boom"))

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `gerador_http_requests_total{method="GET",route="/health",status="200"}`)
	assert.Contains(t, text, "gerador_http_request_duration_seconds_bucket")
	assert.Contains(t, text, `gerador_forms_definition_changes_total{action="create",result="ok"}`)
	assert.Contains(t, text, `gerador_forms_definition_changes_total{action="delete",result="error"}`)
}
