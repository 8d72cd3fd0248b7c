package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/retailkit/pos/internal/auth"
	"github.com/retailkit/pos/internal/operator"
)

func protectedRouter(tokens *auth.Tokens) http.Handler {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(Authenticator(tokens))
		r.Get("/cart", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		r.Group(func(r chi.Router) {
			r.Use(RequireRole(operator.RoleManager))
			r.Post("/products", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})
		})
	})
	return r
}

func TestAuthenticatorRejectsMissingToken(t *testing.T) {
	router := protectedRouter(auth.New("test-secret"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticatorAcceptsBearerToken(t *testing.T) {
	tokens := auth.New("test-secret")
	router := protectedRouter(tokens)

	signed, err := tokens.Issue(operator.Operator{ID: 2, Role: operator.RoleCashier}, time.Now())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/cart", nil)
	r.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRoleGatesCatalogManagement(t *testing.T) {
	tokens := auth.New("test-secret")
	router := protectedRouter(tokens)

	cashier, err := tokens.Issue(operator.Operator{ID: 2, Role: operator.RoleCashier}, time.Now())
	require.NoError(t, err)
	manager, err := tokens.Issue(operator.Operator{ID: 1, Role: operator.RoleManager}, time.Now())
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/products", nil)
	r.Header.Set("Authorization", "Bearer "+cashier)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/products", nil)
	r.Header.Set("Authorization", "Bearer "+manager)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
}
