package handler

import (
	"encoding/json"
	"net/http"

	"github.com/voyagevault/auth-api/internal/application/signup"
	"github.com/voyagevault/auth-api/internal/config"
	"github.com/voyagevault/auth-api/internal/domain"
	"github.com/voyagevault/auth-api/internal/pkg/validate"
	"github.com/voyagevault/auth-api/internal/transport/http/middleware"
)

// AuthHandler handles the email code signup and sign-in endpoints.
type AuthHandler struct {
	svc signup.Service
	cfg *config.Config
}

func NewAuthHandler(svc signup.Service, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: svc, cfg: cfg}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.IssueSignupCode(r.Context(), req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent", Email: req.Email})
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeVerifyRequest(w, r)
	if !ok {
		return
	}
	res, err := h.svc.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.SetAuthCookies(w, h.cfg, res.Tokens)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Email verified", Email: res.User.Email})
}

func (h *AuthHandler) ResendCode(w http.ResponseWriter, r *http.Request) {
	email, ok := decodeEmailRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.ResendCode(r.Context(), email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent", Email: email})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	email, ok := decodeEmailRequest(w, r)
	if !ok {
		return
	}
	if err := h.svc.InitiateSignIn(r.Context(), email); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Verification code sent", Email: email})
}

func (h *AuthHandler) SignInVerify(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeVerifyRequest(w, r)
	if !ok {
		return
	}
	res, err := h.svc.VerifySignInCode(r.Context(), req.Email, req.Code)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	middleware.SetAuthCookies(w, h.cfg, res.Tokens)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "Signed in", Email: res.User.Email})
}

func decodeEmailRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req domain.EmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return "", false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return req.Email, true
}

func decodeVerifyRequest(w http.ResponseWriter, r *http.Request) (domain.VerifyCodeRequest, bool) {
	var req domain.VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, false
	}
	return req, true
}
