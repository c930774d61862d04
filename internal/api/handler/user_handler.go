package handler

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/stiarchives/portal/internal/api/metrics"
	"github.com/stiarchives/portal/internal/core/domain"
	"github.com/stiarchives/portal/internal/core/ports"
)

const signupMessage = "Account created successfully! Please wait for admin verification."

// UserHandler serves the registrant lifecycle endpoints used by the signup
// form and the admin dashboard.
type UserHandler struct {
	service ports.LifecycleService
	files   ports.FileStore
	log     zerolog.Logger
}

func NewUserHandler(service ports.LifecycleService, files ports.FileStore, log zerolog.Logger) *UserHandler {
	return &UserHandler{service: service, files: files, log: log}
}

// Signup handles POST /signup_user.
//
// @Summary      Submit a registration request
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Param        fullname        formData  string  true  "Full name"
// @Param        personal_email  formData  string  true  "Personal email"
// @Param        student_id      formData  string  true  "Student id"
// @Param        role            formData  string  true  "Role"
// @Param        section         formData  string  true  "Section"
// @Param        raf             formData  file    true  "Registration form"
// @Success      200  {object}  signupResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /signup_user [post]
func (h *UserHandler) Signup(c echo.Context) error {
	in := ports.SignupInput{
		FullName:      strings.TrimSpace(c.FormValue("fullname")),
		PersonalEmail: strings.TrimSpace(c.FormValue("personal_email")),
		ExternalID:    strings.TrimSpace(c.FormValue("student_id")),
		Role:          strings.TrimSpace(c.FormValue("role")),
		Section:       strings.TrimSpace(c.FormValue("section")),
	}
	if in.FullName == "" || in.PersonalEmail == "" || in.ExternalID == "" || in.Role == "" || in.Section == "" {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are required")
	}

	fh, err := evidenceFile(c)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return err
	}
	src, err := fh.Open()
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "RAF file could not be read")
	}
	defer src.Close()

	in.Evidence = &ports.EvidenceFile{Filename: fh.Filename, Content: src}
	if err := h.service.Signup(c.Request().Context(), in); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		} else {
			metrics.SignupsTotal.WithLabelValues("error").Inc()
		}
		return err
	}

	metrics.SignupsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusOK, signupResponse{Status: "success", Message: signupMessage})
}

// evidenceFile accepts the upload under "raf" or the older "file" field.
func evidenceFile(c echo.Context) (*multipart.FileHeader, error) {
	for _, field := range []string{"raf", "file"} {
		fh, err := c.FormFile(field)
		if err == nil && fh.Filename != "" {
			return fh, nil
		}
	}
	return nil, echo.NewHTTPError(http.StatusBadRequest, "RAF file is required")
}

// UpdateStatus handles POST /update_user_status.
//
// @Summary      Accept, reject or ban a registrant
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateStatusRequest  true  "Review action"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /update_user_status [post]
func (h *UserHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusRequest
	if err := bindJSON(c, &req); err != nil {
		metrics.ReviewActionsTotal.WithLabelValues("unknown", "invalid").Inc()
		return err
	}
	action, err := domain.ParseReviewAction(req.Action)
	if err != nil {
		metrics.ReviewActionsTotal.WithLabelValues("unknown", "invalid").Inc()
		return err
	}

	if err := h.service.Review(c.Request().Context(), req.UserID, action); err != nil {
		metrics.ReviewActionsTotal.WithLabelValues(string(action), resultLabel(err)).Inc()
		return err
	}

	metrics.ReviewActionsTotal.WithLabelValues(string(action), "ok").Inc()
	h.log.Info().Str("actor", actor(c)).Str("user_id", req.UserID).Str("action", string(action)).Msg("review action applied")
	return c.JSON(http.StatusOK, messageResponse{Message: "User " + string(action) + "ed successfully"})
}

// List handles GET /get_users.
//
// @Summary      List all registrants
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.UserRecord
// @Failure      500  {object}  map[string]string
// @Router       /get_users [get]
func (h *UserHandler) List(c echo.Context) error {
	users, err := h.service.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// RafFile handles GET /get_raf_file.
//
// @Summary      Fetch a registrant's evidence file
// @Tags         users
// @Produce      json
// @Produce      octet-stream
// @Security     BearerAuth
// @Param        path  query     string  true  "Stored evidence location"
// @Success      200   {object}  redirectResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /get_raf_file [get]
func (h *UserHandler) RafFile(c echo.Context) error {
	location := strings.TrimSpace(c.QueryParam("path"))
	if location == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "File path is required")
	}

	resolved, err := h.files.Resolve(location)
	if err != nil {
		return err
	}
	if resolved.IsRemote() {
		return c.JSON(http.StatusOK, redirectResponse{Redirect: resolved.RedirectURL})
	}
	return c.File(resolved.Path)
}

// Remove handles POST /remove_user.
//
// @Summary      Delete a registrant
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      removeUserRequest  true  "Registrant to remove"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /remove_user [post]
func (h *UserHandler) Remove(c echo.Context) error {
	var req removeUserRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := h.service.Remove(c.Request().Context(), req.UserID); err != nil {
		metrics.ReviewActionsTotal.WithLabelValues("remove", resultLabel(err)).Inc()
		return err
	}

	metrics.ReviewActionsTotal.WithLabelValues("remove", "ok").Inc()
	h.log.Info().Str("actor", actor(c)).Str("user_id", req.UserID).Msg("registrant removed")
	return c.JSON(http.StatusOK, messageResponse{Message: "User removed successfully"})
}

// SendWelcomeEmail handles POST /send_welcome_email.
//
// @Summary      Issue credentials and email them
// @Tags         email
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      welcomeEmailRequest  true  "Recipient"
// @Success      200   {object}  ports.IssuedCredentials
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /send_welcome_email [post]
func (h *UserHandler) SendWelcomeEmail(c echo.Context) error {
	var req welcomeEmailRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	creds, err := h.service.IssueCredentialEmail(c.Request().Context(), req.FullName, req.PersonalEmail)
	if err != nil {
		if errors.Is(err, domain.ErrEmailDelivery) {
			metrics.EmailsTotal.WithLabelValues("direct", "failed").Inc()
		}
		return err
	}

	metrics.EmailsTotal.WithLabelValues("direct", "sent").Inc()
	return c.JSON(http.StatusOK, creds)
}

// SendUpdateEmail handles POST /send_update_email.
//
// @Summary      Send a free-form email to a registrant
// @Tags         email
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateEmailRequest  true  "Message"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /send_update_email [post]
func (h *UserHandler) SendUpdateEmail(c echo.Context) error {
	var req updateEmailRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	if err := h.service.SendUpdateEmail(c.Request().Context(), req.ToEmail, req.Subject, req.Message); err != nil {
		if errors.Is(err, domain.ErrEmailDelivery) {
			metrics.EmailsTotal.WithLabelValues("direct", "failed").Inc()
		}
		return err
	}

	metrics.EmailsTotal.WithLabelValues("direct", "sent").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Email sent successfully"})
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}
