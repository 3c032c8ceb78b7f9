package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerExposesCollectors(t *testing.T) {
	reg := NewRegistry()
	ToolInvocations.WithLabelValues("verify_status", "ok").Inc()
	LoopOutcomes.WithLabelValues("reply").Inc()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "loamy_tool_invocations_total")
	assert.Contains(t, rec.Body.String(), "loamy_loop_outcomes_total")
}
