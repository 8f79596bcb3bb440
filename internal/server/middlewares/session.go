package middlewares

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/mdouchement/bluewiki/internal/bwerror"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/session"
)

const (
	// CurrentUserContextKey is the key to retrieve the current_user from echo.Context.
	CurrentUserContextKey = "current_user"
	// CurrentSessionContextKey is the key to retrieve the current_session from echo.Context.
	CurrentSessionContextKey = "current_session"
	// TokenCookieName is the name of the cookie holding the JWT.
	TokenCookieName = "auth_token"

	tokenContextKey = "token"
)

// Session returns a Session auth middleware.
// The JWT is read from the Authorization header or the auth_token cookie.
// It stores current_user and current_session into echo.Context.
func Session(m session.Manager) echo.MiddlewareFunc {
	parse := echojwt.WithConfig(echojwt.Config{
		SigningKey:  m.JWTSigningKey(),
		ContextKey:  tokenContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + TokenCookieName,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(session.Claims)
		},
		ErrorHandler: func(echo.Context, error) error {
			return bwerror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "Invalid login credentials.")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return parse(func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				panic("token implementation has changed")
			}
			claims, ok := token.Claims.(*session.Claims)
			if !ok {
				panic("token implementation has wrong type of claims")
			}

			// Find, validate and store current_session and current_user for handlers.
			sess, user, err := m.Validate(claims)
			if err != nil {
				return err
			}
			c.Set(CurrentSessionContextKey, sess)
			c.Set(CurrentUserContextKey, user)

			return next(c)
		})
	}
}

// OptionalSession is like Session but lets anonymous requests through.
func OptionalSession(m session.Manager) echo.MiddlewareFunc {
	authenticate := Session(m)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		authenticated := authenticate(next)

		return func(c echo.Context) error {
			if !hasToken(c) {
				return next(c)
			}
			return authenticated(c)
		}
	}
}

// Admin restricts the access to administrators.
// It must be used after Session.
func Admin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, _ := c.Get(CurrentUserContextKey).(*model.User)
			if !user.IsAdmin() {
				return bwerror.Forbidden("Administrator privileges required.")
			}
			return next(c)
		}
	}
}

func hasToken(c echo.Context) bool {
	authorization := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		return true
	}

	cookie, err := c.Cookie(TokenCookieName)
	return err == nil && cookie.Value != ""
}
