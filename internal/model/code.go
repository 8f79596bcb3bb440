package model

import (
	"time"
)

const (
	// PurposeRegister is used by the codes sent during registration.
	PurposeRegister = "register"
	// PurposeSMTPTest is used by the codes sent while testing the SMTP settings.
	PurposeSMTPTest = "smtp-test"
)

// A VerificationCode represents a one-shot code sent by email.
type VerificationCode struct {
	Base `msgpack:",inline" storm:"inline"`

	Email    string    `msgpack:"email"     storm:"index"`
	Purpose  string    `msgpack:"purpose"   storm:"index"`
	Code     string    `msgpack:"code"`
	Attempts int       `msgpack:"attempts"`
	ExpireAt time.Time `msgpack:"expire_at" storm:"index"`
}

// Expired returns true if the code can no longer be used.
func (c *VerificationCode) Expired(now time.Time) bool {
	return !c.ExpireAt.After(now)
}
