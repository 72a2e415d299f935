package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/rcmp123/backend/internal/config"
	"github.com/rcmp123/backend/internal/mailer"
	"github.com/rcmp123/backend/internal/store"
	"github.com/rcmp123/backend/internal/token"
)

// ResetService handles the account recovery flow: issuing time-limited reset
// tokens by mail and applying a verified password change.
type ResetService struct {
	accounts  *store.AccountStore
	tokens    *token.ResetService
	mail      mailer.Mailer
	cfg       *config.ResetConfig
	validator *ValidationHelper
}

type forgotPasswordRequest struct {
	Username string `json:"username" validate:"required,min=1"`
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func NewResetService(accounts *store.AccountStore, tokens *token.ResetService, mail mailer.Mailer, cfg *config.ResetConfig) *ResetService {
	return &ResetService{
		accounts:  accounts,
		tokens:    tokens,
		mail:      mail,
		cfg:       cfg,
		validator: NewValidationHelper(),
	}
}

// ForgotPassword issues a reset token for an existing account and mails the
// reset link
// @Summary Request a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body forgotPasswordRequest true "Reset request"
// @Success 200 {object} map[string]string "Reset link sent"
// @Failure 400 {object} ErrorResponse "Unknown user or invalid request"
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Router /auth/forgot-password [post]
func (s *ResetService) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	log.Printf("[RESET] Forgot-password attempt from IP: %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req forgotPasswordRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account, err := s.accounts.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			SendErrorResponse(w, "User not found", http.StatusBadRequest, nil)
			return
		}
		log.Printf("[RESET] Account lookup failed for %s: %v", req.Username, err)
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	resetToken, err := s.tokens.Issue(account.Username)
	if err != nil {
		log.Printf("[RESET] Token issuance failed for %s: %v", account.Username, err)
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.LinkBaseURL, resetToken)
	address := account.Username + "@email.com"
	if err := s.mail.SendResetLink(account.Username, address, resetURL); err != nil {
		log.Printf("[RESET] Mail delivery failed for %s: %v", account.Username, err)
		SendErrorResponse(w, "Failed to send reset link", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[RESET] Reset link sent for %s", account.Username)
	SendJSON(w, http.StatusOK, map[string]string{"message": "Reset link sent"})
}

// ResetPassword verifies a reset token and replaces the credential
// @Summary Reset password with a token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body resetPasswordRequest true "Reset payload"
// @Success 200 {object} map[string]string "Password updated"
// @Failure 400 {object} ErrorResponse "Invalid or expired token"
// @Failure 429 {object} ErrorResponse "Too many attempts"
// @Router /auth/reset-password [post]
func (s *ResetService) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log.Printf("[RESET] Reset-password attempt from IP: %s", r.RemoteAddr)

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req resetPasswordRequest
	if err := dec.Decode(&req); err != nil {
		SendErrorResponse(w, "Invalid request", http.StatusBadRequest, nil)
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}
	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// Expired and forged collapse to the same response so the endpoint leaks
	// nothing about which check failed.
	username, err := s.tokens.Verify(req.Token)
	if err != nil {
		SendErrorResponse(w, "Invalid or expired token", http.StatusBadRequest, nil)
		return
	}

	newHash, err := HashPassword(req.Password)
	if err != nil {
		log.Printf("[RESET] Password hashing failed for %s: %v", username, err)
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	if err := s.accounts.UpdatePassword(r.Context(), username, newHash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			SendErrorResponse(w, "User not found", http.StatusBadRequest, nil)
			return
		}
		log.Printf("[RESET] Credential update failed for %s: %v", username, err)
		SendErrorResponse(w, "An Internal Error Occurred", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[RESET] Password updated for %s", username)
	SendJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
}
