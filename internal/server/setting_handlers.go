package server

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/mailer"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/mdouchement/bluewiki/internal/server/service"
	"github.com/mdouchement/bluewiki/internal/verification"
	"github.com/pkg/errors"
)

// setting contains the first-use and settings handlers.
type setting struct {
	db       database.Client
	firstUse service.FirstUseService
	codes    *verification.Service
}

type testEmailParams struct {
	service.SettingParams
	TestEmail string `json:"test_email"`
}

// Validate implements validation.Validatable.
func (p testEmailParams) Validate() error {
	if err := p.SettingParams.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&p,
		validation.Field(&p.SMTPServer, validation.Required),
		validation.Field(&p.TestEmail, validation.Required, is.EmailFormat),
	)
}

type verifyCodeParams struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Validate implements validation.Validatable.
func (p verifyCodeParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Code, validation.Required, validation.Length(6, 6)),
	)
}

// FirstUseStatus tells whether the wiki needs to be initialized.
func (h *setting) FirstUseStatus(c echo.Context) error {
	required, err := h.firstUse.Required()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"required": required,
	})
}

// FirstUse initializes the wiki with an administrator.
func (h *setting) FirstUse(c echo.Context) error {
	var params service.FirstUseParams
	if err := c.Bind(&params); err != nil {
		return err
	}
	params.UserAgent = c.Request().UserAgent()

	render, err := h.firstUse.Setup(params)
	if err != nil {
		return err
	}

	setTokenCookie(c, render)
	return c.JSON(http.StatusCreated, render)
}

// Show returns the settings.
func (h *setting) Show(c echo.Context) error {
	m, err := h.db.FindSetting()
	if err != nil {
		if !h.db.IsNotFound(err) {
			return errors.Wrap(err, "could not get access to database")
		}
		m = &model.Setting{}
	}

	return c.JSON(http.StatusOK, serializer.Setting(m))
}

// Save updates the settings.
func (h *setting) Save(c echo.Context) error {
	if err := h.authorize(c); err != nil {
		return err
	}

	var params service.SettingParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	m, err := service.SaveSetting(h.db, params)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, serializer.Setting(m))
}

// TestEmail sends a verification code with the given SMTP parameters.
func (h *setting) TestEmail(c echo.Context) error {
	if err := h.authorize(c); err != nil {
		return err
	}

	var params testEmailParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	smtp := mailer.SMTP{
		Host:     params.SMTPServer,
		Port:     params.SMTPPort,
		Username: params.SMTPEmail,
		Password: params.SMTPPassword,
	}
	if smtp.Password == "" {
		// Use the saved password.
		if m, err := h.db.FindSetting(); err == nil {
			smtp.Password = m.SMTPPassword
		}
	}

	err := h.codes.Send(c.Request().Context(), model.PurposeSMTPTest, params.TestEmail, smtp)
	if err != nil {
		return bwerror.NewWithTagCode(http.StatusBadGateway, "smtp-error", "Could not send the test email: "+errors.Cause(err).Error())
	}

	return c.JSON(http.StatusAccepted, echo.Map{
		"message": "A test email has been sent to " + params.TestEmail + ".",
	})
}

// VerifyCode checks a code sent by TestEmail.
func (h *setting) VerifyCode(c echo.Context) error {
	var params verifyCodeParams
	if err := c.Bind(&params); err != nil {
		return err
	}

	err := h.codes.Verify(model.PurposeSMTPTest, params.Email, params.Code)
	if err != nil {
		if err == verification.ErrInvalidCode {
			return bwerror.NewWithTagCode(http.StatusBadRequest, "invalid-code", "Invalid or expired verification code.")
		}
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "The SMTP settings are valid.",
	})
}

// authorize allows administrators, or anyone while the wiki is not initialized.
func (h *setting) authorize(c echo.Context) error {
	if currentUser(c).IsAdmin() {
		return nil
	}

	required, err := h.firstUse.Required()
	if err != nil {
		return err
	}
	if !required {
		return bwerror.Forbidden("Administrator privileges required.")
	}
	return nil
}
