package service

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/pkg/errors"
)

// SettingParams are used to update the settings.
// An empty SMTP password keeps the current one.
type SettingParams struct {
	SMTPServer   string `json:"smtp_server"`
	SMTPPort     int    `json:"smtp_port"`
	SMTPEmail    string `json:"smtp_email"`
	SMTPPassword string `json:"smtp_password"`
	GoogleKey    string `json:"google_key"`
}

// Validate implements validation.Validatable.
func (p SettingParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.SMTPServer, is.Host),
		validation.Field(&p.SMTPPort, validation.Min(0), validation.Max(65535)),
		validation.Field(&p.SMTPEmail, is.EmailFormat, validation.When(p.SMTPServer != "", validation.Required)),
	)
}

// SaveSetting creates or updates the settings of the wiki.
func SaveSetting(db database.Client, params SettingParams) (*model.Setting, error) {
	setting, err := db.FindSetting()
	if err != nil {
		if !db.IsNotFound(err) {
			return nil, errors.Wrap(err, "could not get access to database")
		}
		setting = &model.Setting{}
	}

	setting.SMTPServer = params.SMTPServer
	setting.SMTPPort = params.SMTPPort
	setting.SMTPEmail = params.SMTPEmail
	if params.SMTPPassword != "" {
		setting.SMTPPassword = params.SMTPPassword
	}
	setting.GoogleKey = params.GoogleKey

	if setting.SMTPPort == 0 {
		setting.SMTPPort = 587
	}

	return setting, errors.Wrap(db.Save(setting), "could not persist settings")
}
