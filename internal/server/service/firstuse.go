package service

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/session"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// DefaultTags are the tags created by the first-use setup.
var DefaultTags = []string{"getting-started", "announcements", "guides"}

type (
	// A FirstUseService initializes a new wiki.
	FirstUseService interface {
		// Required returns true while the wiki is not initialized.
		Required() (bool, error)
		// Setup creates the administrator and seeds the wiki.
		Setup(params FirstUseParams) (Render, error)
	}

	// FirstUseParams are used to initialize the wiki.
	FirstUseParams struct {
		Params
		Admin   RegisterParams `json:"admin"`
		Setting SettingParams  `json:"setting"`
	}

	firstUseService struct {
		db     database.Client
		users  *userService
		logger logrus.FieldLogger
	}
)

// Validate implements validation.Validatable.
func (p FirstUseParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Admin),
		validation.Field(&p.Setting),
	)
}

// NewFirstUse returns a new FirstUseService.
func NewFirstUse(db database.Client, sessions session.Manager, logger logrus.FieldLogger) FirstUseService {
	return &firstUseService{
		db: db,
		users: &userService{
			db:       db,
			sessions: sessions,
		},
		logger: logger,
	}
}

func (s *firstUseService) Required() (bool, error) {
	_, err := s.db.FindSetting()
	if err != nil {
		if s.db.IsNotFound(err) {
			return true, nil
		}
		return false, errors.Wrap(err, "could not get access to database")
	}
	return false, nil
}

func (s *firstUseService) Setup(params FirstUseParams) (Render, error) {
	required, err := s.Required()
	if err != nil {
		return nil, err
	}
	if !required {
		return nil, bwerror.NewWithTagCode(http.StatusConflict, "already-initialized", "The wiki is already initialized.")
	}

	admin, err := s.users.create(params.Admin, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.seed(admin)

	// The settings record marks the end of the setup.
	if _, err = SaveSetting(s.db, params.Setting); err != nil {
		return nil, err
	}

	s.logger.WithField("email", admin.Email).Info("wiki initialized")
	return s.users.authenticated(admin, params.Params)
}

// seed creates the default tags and pages. Existing records are left untouched.
func (s *firstUseService) seed(admin *model.User) {
	for _, name := range DefaultTags {
		if err := s.db.Save(&model.Tag{Name: name}); err != nil && !s.db.IsAlreadyExists(err) {
			s.logger.WithError(err).WithField("tag", name).Warn("could not seed tag")
		}
	}

	articles := []*model.Article{
		{
			Path:     "/",
			Title:    "Welcome to Blue Wiki",
			Content:  "# Welcome\n\nThis is the home page of your wiki.",
			AuthorID: admin.ID,
		},
		{
			Path:     "/getting-started",
			Title:    "Getting started",
			Content:  "# Getting started\n\nCreate articles under any path, folders appear by themselves.",
			AuthorID: admin.ID,
		},
	}
	for _, article := range articles {
		if err := s.db.Save(article); err != nil && !s.db.IsAlreadyExists(err) {
			s.logger.WithError(err).WithField("path", article.Path).Warn("could not seed article")
		}
	}
}
