package handlers

import (
	"net/http"
	"time"

	"github.com/pribylovaa/paleta/internal/models"
	"github.com/pribylovaa/paleta/internal/transport/http/apierrors"
)

type contactView struct {
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type profileView struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Contact   contactView `json:"contact"`
	CreatedAt time.Time   `json:"created_at"`
}

// profileFrom — пустой контакт отдаётся как null.
func profileFrom(u *models.User) profileView {
	v := profileView{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}

	if u.Email != "" {
		email := u.Email
		v.Contact.Email = &email
	}

	if u.Phone != "" {
		phone := u.Phone
		v.Contact.Phone = &phone
	}

	return v
}

func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	u, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeData(w, http.StatusOK, profileFrom(u), nil)
}
