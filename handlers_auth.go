package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tranvh/opsched/models"
)

// LoginHandler is the simulated login endpoint: it looks the user up by
// email in the Users table and compares the supplied password against the
// single shared password from the configuration. This is a placeholder, not
// real authentication, and the token it returns is decorative: it is signed
// so the frontend has something shaped like a credential, but no route
// checks it.
func (app *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	users, err := app.Store.List(r.Context(), models.TableUsers, map[string]string{"email": req.Email})
	if err != nil {
		app.sendStoreError(w, err)
		return
	}
	if len(users) == 0 || req.Password != app.Cfg.LoginPassword {
		app.sendErrorResponse(w, "Incorrect email or password.", http.StatusUnauthorized)
		return
	}
	user := users[0]

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user["id"],
		"email": user["email"],
		"jti":   uuid.NewString(),
		"iat":   time.Now().Unix(),
	})
	tokenString, err := token.SignedString([]byte(app.Cfg.JWTSecret))
	if err != nil {
		app.sendErrorResponse(w, "Failed to sign token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{User: user, Token: tokenString})
}
