package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/showroom/pkg/entitlement"
	"github.com/dmitrymomot/showroom/pkg/metrics"
)

func TestCollector_Observer(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.New(reg)

	c.QuotaChecked(entitlement.QuotaDecision{Resource: entitlement.ResourceListings, Tier: entitlement.TierFree, CanAddMore: true})
	c.QuotaChecked(entitlement.QuotaDecision{Resource: entitlement.ResourceListings, Tier: entitlement.TierFree})
	c.QuotaChecked(entitlement.QuotaDecision{Resource: entitlement.ResourceListings, Tier: entitlement.TierFree})
	c.TierFallback("GOLD")

	expected := `
# HELP showroom_quota_checks_total Quota decisions by resource, tier and outcome.
# TYPE showroom_quota_checks_total counter
showroom_quota_checks_total{outcome="allowed",resource="listings",tier="FREE"} 1
showroom_quota_checks_total{outcome="denied",resource="listings",tier="FREE"} 2
# HELP showroom_tier_fallbacks_total Subscriptions with an unrecognized tier resolved as FREE.
# TYPE showroom_tier_fallbacks_total counter
showroom_tier_fallbacks_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"showroom_quota_checks_total", "showroom_tier_fallbacks_total"))
}

func TestCollector_Middleware(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Get("/metrics", c.Handler().ServeHTTP)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/listings/42", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	n, err := testutil.GatherAndCount(reg, "showroom_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/listings/{id}"`)
	assert.Contains(t, rec.Body.String(), `status="418"`)
}
