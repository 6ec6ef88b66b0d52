package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()

	require.NoError(t, Register(reg))
	require.NoError(t, Register(reg), "second registration is a no-op")

	CartOperations.WithLabelValues("add").Inc()

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fitfuzz_cart_operations_total")
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(CheckoutSubmissions.WithLabelValues("success"))
	CheckoutSubmissions.WithLabelValues("success").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CheckoutSubmissions.WithLabelValues("success")))
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(5 * time.Millisecond)
	assert.GreaterOrEqual(t, timer.Duration(), 5*time.Millisecond)

	assert.NotPanics(t, func() { timer.ObserveBackend("colors", "200") })
}
