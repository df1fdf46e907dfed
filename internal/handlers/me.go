package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dsmolyakov/gostdocs/internal/handlers/render"
	"github.com/dsmolyakov/gostdocs/internal/service/auth"
)

type MeResponse struct {
	ID          uuid.UUID `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions"`
}

// Me reports the authenticated principal and its effective permissions
func Me(w http.ResponseWriter, r *http.Request) {
	user, err := auth.CurrentUser(r.Context())
	if err != nil {
		render.ServiceError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	perms := user.Role.Permissions()
	response := MeResponse{
		ID:          user.ID,
		CreatedAt:   user.CreatedAt,
		Email:       user.Email,
		Username:    user.Username,
		Role:        string(user.Role),
		Permissions: make([]string, 0, len(perms)),
	}
	for _, p := range perms {
		response.Permissions = append(response.Permissions, string(p))
	}

	render.JSON(w, response)
}
