package metric

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	s := NewSet()

	s.RecordEventReceived("BLIP_SUBMITTED")
	s.RecordEventReceived("BLIP_SUBMITTED")
	assert.Equal(t, 2.0, testutil.ToFloat64(s.EventsReceived.WithLabelValues("BLIP_SUBMITTED")))

	s.RecordRequest("jsonrpc", true)
	s.RecordRequest("jsonrpc", false)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.RequestsTotal.WithLabelValues("jsonrpc")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.RequestsFailed.WithLabelValues("jsonrpc")))

	s.RecordAuthFailure()
	assert.Equal(t, 1.0, testutil.ToFloat64(s.AuthFailures))

	s.AddOperationsSubmitted(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(s.OperationsSubmitted))

	s.ObserveSubmit("http://gmodules.com/api/rpc", 50*time.Millisecond, true)
	s.ObserveSubmit("http://gmodules.com/api/rpc", time.Second, false)
}

func TestNilSetIsSafe(t *testing.T) {
	var s *Set
	s.RecordEventReceived("BLIP_SUBMITTED")
	s.RecordRequest("jsonrpc", true)
	s.RecordAuthFailure()
	s.AddOperationsSubmitted(1)
	s.ObserveSubmit("gw", time.Second, true)
}

func TestHandlerServesMetrics(t *testing.T) {
	s := NewSet()
	s.RecordEventReceived("DOCUMENT_CHANGED")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "waverobot_events_received_total")
}
