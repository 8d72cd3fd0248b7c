package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/retailkit/pos/internal/auth"
	"github.com/retailkit/pos/internal/operator"
)

type OperatorStore interface {
	Authenticate(ctx context.Context, username, password string) (operator.Operator, error)
}

type AuthHandler struct {
	Operators OperatorStore
	Tokens    *auth.Tokens
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResp struct {
	Token    string            `json:"token"`
	Operator operator.Operator `json:"operator"`
}

func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/login", h.login)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	op, err := h.Operators.Authenticate(ctx, req.Username, req.Password)
	if errors.Is(err, operator.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	token, err := h.Tokens.Issue(op, time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, Operator: op})
}
