package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stiarchives/portal/internal/core/domain"
)

// --- Requests ---

type updateStatusRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
	Action string `json:"action" validate:"required,oneof=accept reject ban"`
}

type removeUserRequest struct {
	UserID string `json:"user_id" validate:"required,max=128"`
}

type welcomeEmailRequest struct {
	FullName      string `json:"fullname" validate:"required,max=256"`
	PersonalEmail string `json:"personal_email" validate:"required,email"`
}

type updateEmailRequest struct {
	ToEmail string `json:"to_email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=256"`
	Message string `json:"message" validate:"required"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// --- Responses ---

type messageResponse struct {
	Message string `json:"message"`
}

type signupResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type redirectResponse struct {
	Redirect string `json:"redirect"`
}

type loginResponse struct {
	Token string        `json:"token"`
	Admin *domain.Admin `json:"admin"`
}

// bindJSON decodes a JSON body strictly, rejecting unknown fields, then runs
// the registered validator.
func bindJSON(c echo.Context, dst any) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return echo.NewHTTPError(http.StatusBadRequest, "request body is required")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload: "+err.Error())
	}
	if dec.More() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload: trailing data")
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}
