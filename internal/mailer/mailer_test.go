package mailer_test

import (
	"context"
	"testing"

	"github.com/mdouchement/bluewiki/internal/mailer"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestFromSetting(t *testing.T) {
	smtp := mailer.FromSetting(&model.Setting{
		SMTPServer:   "smtp.nowhere.lan",
		SMTPPort:     465,
		SMTPEmail:    "wiki@nowhere.lan",
		SMTPPassword: "secret",
	})

	assert.Equal(t, mailer.SMTP{Host: "smtp.nowhere.lan", Port: 465, Username: "wiki@nowhere.lan", Password: "secret"}, smtp)
}

func TestSend_InvalidRecipient(t *testing.T) {
	m := mailer.New()

	err := m.Send(context.Background(), mailer.SMTP{Host: "localhost", Port: 2525}, mailer.Message{
		From: "wiki@nowhere.lan",
		To:   "not an address",
	})
	assert.ErrorContains(t, err, "invalid recipient")
}

func TestMemory(t *testing.T) {
	m := &mailer.Memory{}

	_, ok := m.Last()
	assert.False(t, ok)

	assert.NoError(t, m.Send(context.Background(), mailer.SMTP{}, mailer.Message{To: "a@nowhere.lan", Subject: "hi"}))
	msg, ok := m.Last()
	assert.True(t, ok)
	assert.Equal(t, "hi", msg.Subject)
}
