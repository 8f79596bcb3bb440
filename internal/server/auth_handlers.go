package server

import (
	"net/http"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/mailer"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/middlewares"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/mdouchement/bluewiki/internal/server/service"
	"github.com/mdouchement/bluewiki/internal/server/session"
	"github.com/mdouchement/bluewiki/internal/verification"
	"github.com/pkg/errors"
)

// auth contains all authentication handlers.
type auth struct {
	db       database.Client
	sessions session.Manager
	users    service.UserService
	codes    *verification.Service
}

type codeParams struct {
	Email string `json:"email"`
}

// Validate implements validation.Validatable.
func (p codeParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
	)
}

///// Login
////
//

// Login handler is used to login the user.
// The token is also set as cookie for browsers.
func (h *auth) Login(c echo.Context) error {
	var params service.LoginParams
	if err := c.Bind(&params); err != nil {
		return err
	}
	params.UserAgent = c.Request().UserAgent()

	login, err := h.users.Login(params)
	if err != nil {
		return err
	}

	setTokenCookie(c, login)
	return c.JSON(http.StatusOK, login)
}

///// Logout
////
//

// Logout handler revokes the current session.
func (h *auth) Logout(c echo.Context) error {
	if err := h.sessions.Revoke(currentSession(c)); err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     middlewares.TokenCookieName,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.NoContent(http.StatusNoContent)
}

///// Status
////
//

// Status handler returns the current user if any.
func (h *auth) Status(c echo.Context) error {
	user := currentUser(c)
	if user == nil {
		return c.JSON(http.StatusOK, echo.Map{
			"authenticated": false,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"authenticated": true,
		"user":          serializer.User(user),
		"expire_at":     currentSession(c).ExpireAt.UTC(),
	})
}

///// Register
////
//

// RegisterCode handler sends a registration code by email.
func (h *auth) RegisterCode(c echo.Context) error {
	var params codeParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	setting, err := h.db.FindSetting()
	if err != nil && !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get access to database")
	}
	if !setting.MailConfigured() {
		return bwerror.NewWithTagCode(http.StatusConflict, "mail-not-configured", "Registration codes are not enabled on this wiki.")
	}

	_, err = h.db.FindUserByMail(params.Email)
	if err == nil {
		return bwerror.NewWithTagCode(http.StatusConflict, "already-registered", "This email is already registered.")
	}
	if !h.db.IsNotFound(err) {
		return errors.Wrap(err, "could not get access to database")
	}

	err = h.codes.Send(c.Request().Context(), model.PurposeRegister, params.Email, mailer.FromSetting(setting))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, echo.Map{
		"message": "A verification code has been sent to " + params.Email + ".",
	})
}

// Register handler is used to register the user.
func (h *auth) Register(c echo.Context) error {
	var params service.RegisterParams
	if err := c.Bind(&params); err != nil {
		return err
	}
	params.UserAgent = c.Request().UserAgent()

	register, err := h.users.Register(params)
	if err != nil {
		return err
	}

	setTokenCookie(c, register)
	return c.JSON(http.StatusCreated, register)
}

func setTokenCookie(c echo.Context, render service.Render) {
	m, ok := render.(echo.Map)
	if !ok {
		return
	}
	token, _ := m["token"].(string)
	expireAt, _ := m["expire_at"].(time.Time)

	c.SetCookie(&http.Cookie{
		Name:     middlewares.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expireAt,
		HttpOnly: true,
		Secure:   c.IsTLS(),
		SameSite: http.SameSiteLaxMode,
	})
}
