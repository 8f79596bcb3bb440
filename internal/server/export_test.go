package server

import (
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/mdouchement/bluewiki/internal/server/session"
)

// This file is only for test purpose and is only loaded by test framework.

// TokenFromUser returns a JWT of a new session of the given user.
func TokenFromUser(ioc IOC, u *model.User) string {
	m := session.NewManager(ioc.Database, ioc.SigningKey, ioc.SessionExpirationTime)

	s, err := m.Generate(u, "test")
	if err != nil {
		panic(err)
	}

	token, err := m.Token(s, u)
	if err != nil {
		panic(err)
	}
	return token
}
