package handlers

import (
	"net/http"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/service"
	"github.com/pribylovaa/paleta/internal/transport/http/apierrors"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	DeviceID   string `json:"device_id"`
	DeviceName string `json:"device_name"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	DeviceID     string `json:"device_id"`
	DeviceName   string `json:"device_name"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type userBrief struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type loginResponse struct {
	models.TokenPair
	User userBrief `json:"user"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	u, err := h.svc.Register(r.Context(), service.RegisterInput{
		Username: in.Username,
		Password: in.Password,
		Email:    in.Email,
		Phone:    in.Phone,
		ClientIP: clientIP(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusCreated, profileFrom(u), nil)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	sess, err := h.svc.Login(r.Context(), service.LoginInput{
		Username:   in.Username,
		Password:   in.Password,
		DeviceID:   in.DeviceID,
		DeviceName: in.DeviceName,
		ClientIP:   clientIP(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, loginResponse{
		TokenPair: sess.Tokens,
		User:      userBrief{ID: sess.User.ID, Username: sess.User.Username},
	}, nil)
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var in refreshRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	pair, err := h.svc.Refresh(r.Context(), service.RefreshInput{
		RefreshToken: in.RefreshToken,
		DeviceID:     in.DeviceID,
		DeviceName:   in.DeviceName,
		ClientIP:     clientIP(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, pair, nil)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	var in logoutRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	revoked, err := h.svc.Logout(r.Context(), in.RefreshToken)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, map[string]bool{"revoked": revoked}, nil)
}
