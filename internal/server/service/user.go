package service

import (
	"net/http"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/serializer"
	"github.com/mdouchement/bluewiki/internal/server/session"
	"github.com/mdouchement/bluewiki/internal/verification"
	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
)

var phoneFormat = regexp.MustCompile(`^\+?[0-9 .-]{6,20}$`)

type (
	// A UserService is a service used to manage users.
	UserService interface {
		Register(params RegisterParams) (Render, error)
		Login(params LoginParams) (Render, error)
		Update(current, user *model.User, params UpdateUserParams) (Render, error)
		Delete(user *model.User) error
	}

	// RegisterParams are used to register a user.
	RegisterParams struct {
		Params
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
		Code     string `json:"code"`
	}

	// LoginParams are used to login a user.
	LoginParams struct {
		Params
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	// UpdateUserParams are used to update a user.
	// Empty fields are left unchanged.
	UpdateUserParams struct {
		Params
		Name            string `json:"name"`
		Email           string `json:"email"`
		Phone           string `json:"phone"`
		Role            string `json:"role"`
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}

	userService struct {
		db       database.Client
		sessions session.Manager
		codes    *verification.Service
	}
)

// Validate implements validation.Validatable.
func (p RegisterParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 64)),
		validation.Field(&p.Email, validation.Required, is.EmailFormat),
		validation.Field(&p.Phone, validation.Required, validation.Match(phoneFormat)),
		validation.Field(&p.Password, validation.Required, validation.Length(8, 128)),
	)
}

// Validate implements validation.Validatable.
func (p LoginParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required),
		validation.Field(&p.Password, validation.Required),
	)
}

// Validate implements validation.Validatable.
func (p UpdateUserParams) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Length(1, 64)),
		validation.Field(&p.Email, is.EmailFormat),
		validation.Field(&p.Phone, validation.Match(phoneFormat)),
		validation.Field(&p.Role, validation.In(model.RoleAdmin, model.RoleUser)),
		validation.Field(&p.NewPassword, validation.Length(8, 128)),
		validation.Field(&p.CurrentPassword, validation.When(p.NewPassword != "", validation.Required)),
	)
}

// NewUser returns a new UserService.
func NewUser(db database.Client, sessions session.Manager, codes *verification.Service) UserService {
	return &userService{
		db:       db,
		sessions: sessions,
		codes:    codes,
	}
}

func (s *userService) Register(params RegisterParams) (Render, error) {
	setting, err := s.db.FindSetting()
	if err != nil && !s.db.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not get access to database")
	}

	// A code is required as soon as the wiki can send emails.
	if setting.MailConfigured() {
		if err = s.codes.Verify(model.PurposeRegister, params.Email, params.Code); err != nil {
			if err == verification.ErrInvalidCode {
				return nil, bwerror.NewWithTagCode(http.StatusBadRequest, "invalid-code", "Invalid or expired verification code.")
			}
			return nil, err
		}
	}

	user, err := s.create(params, model.RoleUser)
	if err != nil {
		return nil, err
	}

	return s.authenticated(user, params.Params)
}

// create persists a new user after checking that its email and phone are free to use.
func (s *userService) create(params RegisterParams, role string) (*model.User, error) {
	if err := s.available(0, params.Email, params.Phone); err != nil {
		return nil, err
	}

	user := model.NewUser()
	user.Name = params.Name
	user.Email = params.Email
	user.Phone = params.Phone
	user.Role = role

	if err := s.password(user, params.Password); err != nil {
		return nil, err
	}

	// Persist the model
	if err := s.db.Save(user); err != nil {
		if s.db.IsAlreadyExists(err) {
			return nil, bwerror.NewWithTagCode(http.StatusConflict, "already-registered", "This email or phone is already registered.")
		}
		return nil, errors.Wrap(err, "could not persist user")
	}

	return user, nil
}

func (s *userService) Login(params LoginParams) (Render, error) {
	// Retrieve user
	user, err := s.db.FindUserByMail(params.Email)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, bwerror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "Invalid email or password.")
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}

	// Verify password
	if err = argon2.CompareHashAndPasswordString(user.Password, params.Password); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return nil, bwerror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "Invalid email or password.")
		}
		return nil, errors.Wrap(err, "could not validate password")
	}

	return s.authenticated(user, params.Params)
}

func (s *userService) Update(current, user *model.User, params UpdateUserParams) (Render, error) {
	if current.ID != user.ID && !current.IsAdmin() {
		return nil, bwerror.Forbidden("You can only update your own account.")
	}

	if params.Role != "" && params.Role != user.Role {
		if !current.IsAdmin() {
			return nil, bwerror.Forbidden("Only administrators can change roles.")
		}
		user.Role = params.Role
	}

	if err := s.available(user.ID, params.Email, params.Phone); err != nil {
		return nil, err
	}
	if params.Name != "" {
		user.Name = params.Name
	}
	if params.Email != "" {
		user.Email = params.Email
	}
	if params.Phone != "" {
		user.Phone = params.Phone
	}

	if params.NewPassword != "" {
		// Administrators can reset the password of other users.
		if current.ID == user.ID || !current.IsAdmin() {
			if err := argon2.CompareHashAndPasswordString(user.Password, params.CurrentPassword); err != nil {
				if err == argon2.ErrMismatchedHashAndPassword {
					return nil, bwerror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "The current password you entered is incorrect. Please try again.")
				}
				return nil, errors.Wrap(err, "could not validate password")
			}
		}

		if err := s.password(user, params.NewPassword); err != nil {
			return nil, err
		}
	}

	if err := s.db.Save(user); err != nil {
		if s.db.IsAlreadyExists(err) {
			return nil, bwerror.NewWithTagCode(http.StatusConflict, "already-registered", "This email or phone is already registered.")
		}
		return nil, errors.Wrap(err, "could not persist user")
	}

	return serializer.User(user), nil
}

func (s *userService) Delete(user *model.User) error {
	if err := s.db.DeleteSessionsByUserID(user.ID); err != nil {
		return err
	}
	return errors.Wrap(s.db.Delete(user), "could not delete user")
}

func (s *userService) authenticated(user *model.User, params Params) (Render, error) {
	var err error
	sess := params.Session
	if sess == nil {
		sess, err = s.sessions.Generate(user, params.UserAgent)
		if err != nil {
			return nil, err
		}
	}

	token, err := s.sessions.Token(sess, user)
	if err != nil {
		return nil, err
	}

	return echo.Map{
		"user":      serializer.User(user),
		"token":     token,
		"expire_at": sess.ExpireAt.UTC(),
	}, nil
}

// available checks that the given email and phone are not used by another user than id.
func (s *userService) available(id int, email, phone string) error {
	if email != "" {
		u, err := s.db.FindUserByMail(email)
		if err != nil && !s.db.IsNotFound(err) {
			return errors.Wrap(err, "could not get access to database")
		}
		if u != nil && u.ID != id {
			return bwerror.NewWithTagCode(http.StatusConflict, "already-registered", "This email is already registered.")
		}
	}

	if phone != "" {
		u, err := s.db.FindUserByPhone(phone)
		if err != nil && !s.db.IsNotFound(err) {
			return errors.Wrap(err, "could not get access to database")
		}
		if u != nil && u.ID != id {
			return bwerror.NewWithTagCode(http.StatusConflict, "already-registered", "This phone is already registered.")
		}
	}

	return nil
}

func (s *userService) password(user *model.User, password string) (err error) {
	// Crypt password
	user.Password, err = argon2.GenerateFromPasswordString(password, argon2.Default)
	if err != nil {
		return errors.Wrap(err, "could not store user password safe")
	}
	user.PasswordUpdatedAt = time.Now().Unix()
	return nil
}
