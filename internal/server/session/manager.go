package session

import (
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/pkg/errors"
)

// Issuer is the issuer of the generated JWT.
const Issuer = "bluewiki"

type (
	// Claims are the claims carried by the JWT handed to clients.
	// The registered `jti` is the token of the backing session.
	Claims struct {
		Role string `json:"role"`
		jwt.RegisteredClaims
	}

	// A Manager manages sessions.
	Manager interface {
		JWTSigningKey() []byte
		// Generate creates and persists a new session for the given user.
		Generate(user *model.User, userAgent string) (*model.Session, error)
		// Token returns the signed JWT of the given session.
		Token(session *model.Session, user *model.User) (string, error)
		// Validate returns the session and the user of the given claims.
		Validate(claims *Claims) (*model.Session, *model.User, error)
		// Revoke deletes the given session.
		Revoke(session *model.Session) error
	}

	manager struct {
		db database.Client
		// JWT params
		signingKey []byte
		// Session params
		expirationTime time.Duration
	}
)

// NewManager returns a new manager.
func NewManager(db database.Client, signingKey []byte, expirationTime time.Duration) Manager {
	return &manager{
		db:             db,
		signingKey:     signingKey,
		expirationTime: expirationTime,
	}
}

func (m *manager) JWTSigningKey() []byte {
	return m.signingKey
}

func (m *manager) Generate(user *model.User, userAgent string) (*model.Session, error) {
	token, err := NewToken(24)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		UserID:    user.ID,
		UserAgent: userAgent,
		Token:     token,
		ExpireAt:  time.Now().Add(m.expirationTime).UTC(),
	}

	return session, errors.Wrap(m.db.Save(session), "could not save session")
}

func (m *manager) Token(session *model.Session, user *model.User) (string, error) {
	claims := &Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.Itoa(user.ID),
			ID:        session.Token,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(session.ExpireAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	return token, errors.Wrap(err, "could not sign token")
}

func (m *manager) Validate(claims *Claims) (*model.Session, *model.User, error) {
	session, err := m.db.FindSessionByToken(claims.ID)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, invalidAuth("Invalid login credentials.")
		}
		return nil, nil, errors.Wrap(err, "could not get access to database")
	}

	if session.ExpireAt.Before(time.Now()) || strconv.Itoa(session.UserID) != claims.Subject {
		return nil, nil, invalidAuth("Invalid login credentials.")
	}

	// Get current_user.
	user, err := m.db.FindUser(session.UserID)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, nil, invalidAuth("Invalid login credentials.")
		}
		return nil, nil, errors.Wrap(err, "could not get access to database")
	}

	// Check if password has changed since token was generated.
	if claims.IssuedAt == nil || claims.IssuedAt.Unix() < user.PasswordUpdatedAt {
		return nil, nil, invalidAuth("Revoked token.")
	}

	return session, user, nil
}

func (m *manager) Revoke(session *model.Session) error {
	return errors.Wrap(m.db.Delete(session), "could not delete session")
}

func invalidAuth(message string) error {
	return bwerror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", message)
}
