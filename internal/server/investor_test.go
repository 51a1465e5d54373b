package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"venturelink/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMatches_RequiresSubscription(t *testing.T) {
	env := newTestEnv(t)

	req := env.session(t, httptest.NewRequest(http.MethodGet, "/matches", nil), investorToken)
	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
}

func TestPreferencesThenMatches(t *testing.T) {
	env := newTestEnv(t)
	env.store.subs["inv-1"] = &types.Subscription{UserID: "inv-1", Status: "active"}
	handler := env.svc.Handler()

	req := env.session(t, httptest.NewRequest(http.MethodGet, "/matches", nil), investorToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = env.session(t, formRequest(http.MethodPut, "/preferences", url.Values{
		"sectors":          {"climate", " ", "logistics"},
		"investment_range": {"100k-500k"},
		"risk_appetite":    {"medium"},
	}), investorToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"climate", "logistics"}, env.store.prefs["inv-1"].Sectors)

	req = env.session(t, httptest.NewRequest(http.MethodGet, "/matches", nil), investorToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	matches := decodeMap(t, rec)["matches"].([]any)
	require.Len(t, matches, 1)
	assert.Equal(t, 0.5, matches[0].(map[string]any)["matchScore"])
}
