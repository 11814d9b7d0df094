package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FreshMarket/pkg/httputil"
)

func staticValidator(claims *Claims) TokenValidator {
	return func(token string) (*Claims, error) {
		if token != "good" {
			return nil, errors.New("bad token")
		}
		return claims, nil
	}
}

func serveAuth(t *testing.T, v TokenValidator, header string, next http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	Auth(v)(next).ServeHTTP(rr, req)
	return rr
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error.Code
}

func TestAuth_InjectsClaims(t *testing.T) {
	v := staticValidator(&Claims{UserID: "u-1", Role: RoleBuyerOwner, SessionID: "sess-1"})

	var user, role, session string
	rr := serveAuth(t, v, "Bearer good", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user = UserIDFromContext(r.Context())
		role = RoleFromContext(r.Context())
		session = SessionIDFromContext(r.Context())
	}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "u-1", user)
	assert.Equal(t, RoleBuyerOwner, role)
	assert.Equal(t, "sess-1", session)
}

func TestAuth_SessionFallsBackToUserID(t *testing.T) {
	v := staticValidator(&Claims{UserID: "u-2", Role: RoleBuyerManager})

	var session string
	serveAuth(t, v, "bearer good", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session = SessionIDFromContext(r.Context())
	}))

	assert.Equal(t, "u-2", session)
}

func TestAuth_Rejections(t *testing.T) {
	v := staticValidator(&Claims{UserID: "u-1"})
	for _, header := range []string{"", "Basic abc", "Bearer", "Bearer bad"} {
		rr := serveAuth(t, v, header, okHandler())
		assert.Equal(t, http.StatusUnauthorized, rr.Code, header)
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, rr))
	}
}

func TestRequireRole(t *testing.T) {
	v := staticValidator(&Claims{UserID: "u-1", Role: RoleVendor})
	rr := serveAuth(t, v, "Bearer good", RequireRole(RoleBuyerOwner, RoleBuyerManager)(okHandler()))

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rr))

	v = staticValidator(&Claims{UserID: "u-1", Role: RoleBuyerManager})
	rr = serveAuth(t, v, "Bearer good", RequireRole(RoleBuyerOwner, RoleBuyerManager)(okHandler()))
	assert.Equal(t, http.StatusOK, rr.Code)
}
