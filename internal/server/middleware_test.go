package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"venturelink/internal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionCleared(rec *httptest.ResponseRecorder) bool {
	for _, c := range rec.Result().Cookies() {
		if c.Name == internal.COOKIE_ACCESS_TOKEN_NAME && c.MaxAge < 0 {
			return true
		}
	}
	return false
}

func TestRequireAuth_NoCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pitches/pitch-1", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	req := env.session(t, httptest.NewRequest(http.MethodGet, "/pitches/pitch-1", nil), "forged")
	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, sessionCleared(rec))
}

func TestGetPitch_AnyRole(t *testing.T) {
	env := newTestEnv(t)

	for _, token := range []string{entrepreneurToken, investorToken} {
		req := env.session(t, httptest.NewRequest(http.MethodGet, "/pitches/pitch-1", nil), token)
		rec := httptest.NewRecorder()
		env.svc.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Compostable Packaging", decodeMap(t, rec)["title"])
	}
}

func TestRequireRole_EntrepreneurCannotSignNDA(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"signature_text": {"Grace"}}
	req := httptest.NewRequest(http.MethodPost, "/pitches/pitch-1/nda", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = env.session(t, req, entrepreneurToken)

	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, sessionCleared(rec))
	assert.Empty(t, env.store.grants)
}

func TestRequireRole_InvestorCannotCreatePitch(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{"title": {"Mine"}, "summary": {"Stolen idea"}}
	req := httptest.NewRequest(http.MethodPost, "/pitches", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req = env.session(t, req, investorToken)

	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, sessionCleared(rec))
	assert.Len(t, env.store.pitches, 1)
}

func TestStripTrailingSlash(t *testing.T) {
	env := newTestEnv(t)

	rec := httptest.NewRecorder()
	env.svc.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/", nil))
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/healthz", rec.Header().Get("Location"))
}
