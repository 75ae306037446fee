package handlers

import (
	"net/http"

	"github.com/pribylovaa/paleta/internal/service"
	"github.com/pribylovaa/paleta/internal/transport/http/apierrors"
)

type forgotRequest struct {
	Channel string `json:"channel"`
	Contact string `json:"contact"`
}

type resetRequest struct {
	Channel         string `json:"channel"`
	Contact         string `json:"contact"`
	Code            string `json:"code"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// ForgotPassword отвечает одинаково для известного и неизвестного контакта.
func (h *Handlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var in forgotRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	err := h.svc.RequestResetCode(r.Context(), service.ResetRequestInput{
		Channel:  in.Channel,
		Contact:  in.Contact,
		ClientIP: clientIP(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, messageResponse{
		Message: "if the account exists, a reset code has been sent",
	}, nil)
}

func (h *Handlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := decodeStrict(w, r, &in); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	err := h.svc.ConfirmReset(r.Context(), service.ResetConfirmInput{
		Channel:         in.Channel,
		Contact:         in.Contact,
		Code:            in.Code,
		NewPassword:     in.NewPassword,
		ConfirmPassword: in.ConfirmPassword,
		ClientIP:        clientIP(r),
	})
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, messageResponse{Message: "password has been reset"}, nil)
}
