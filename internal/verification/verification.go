package verification

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"time"

	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/mailer"
	"github.com/mdouchement/bluewiki/internal/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ErrInvalidCode is returned when a code does not match or has expired.
var ErrInvalidCode = errors.New("invalid or expired verification code")

// MaxAttempts is the number of wrong guesses after which a code is revoked.
const MaxAttempts = 5

// TTLs of the codes by purpose.
var TTLs = map[string]time.Duration{
	model.PurposeRegister: 15 * time.Minute,
	model.PurposeSMTPTest: 5 * time.Minute,
}

var subjects = map[string]string{
	model.PurposeRegister: "Your Blue Wiki registration code",
	model.PurposeSMTPTest: "Blue Wiki SMTP test",
}

// A Service sends and checks one-shot verification codes.
type Service struct {
	db     database.Client
	mailer mailer.Mailer
	logger logrus.FieldLogger
	now    func() time.Time
}

// New returns a new Service.
func New(db database.Client, m mailer.Mailer, logger logrus.FieldLogger) *Service {
	return &Service{
		db:     db,
		mailer: m,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Send generates a code for the given purpose and sends it to email through the given SMTP server.
// A new code replaces the previous one.
func (s *Service) Send(ctx context.Context, purpose, email string, server mailer.SMTP) error {
	ttl, ok := TTLs[purpose]
	if !ok {
		return errors.Errorf("unknown verification purpose: %s", purpose)
	}

	if err := s.db.RevokeExpiredCodes(); err != nil {
		return err
	}

	code, err := generate()
	if err != nil {
		return errors.Wrap(err, "could not generate verification code")
	}

	record := &model.VerificationCode{
		Email:    email,
		Purpose:  purpose,
		Code:     code,
		ExpireAt: s.now().Add(ttl),
	}
	if err = s.db.Save(record); err != nil {
		return errors.Wrap(err, "could not persist verification code")
	}

	err = s.mailer.Send(ctx, server, mailer.Message{
		From:    server.Username,
		To:      email,
		Subject: subjects[purpose],
		Text:    fmt.Sprintf("Your verification code is %s\nIt expires in %s.\n", code, ttl),
		HTML:    fmt.Sprintf("<p>Your verification code is <strong>%s</strong></p><p>It expires in %s.</p>", code, ttl),
	})
	if err != nil {
		if derr := s.db.Delete(record); derr != nil {
			s.logger.WithError(derr).Warn("could not delete unsent verification code")
		}
		return err
	}

	s.logger.WithFields(logrus.Fields{"purpose": purpose, "email": email}).Info("verification code sent")
	return nil
}

// Verify checks the code sent to email for the given purpose.
// A matching code is consumed. A code is revoked after MaxAttempts wrong guesses.
func (s *Service) Verify(purpose, email, code string) error {
	if err := s.db.RevokeExpiredCodes(); err != nil {
		return err
	}

	record, err := s.db.FindVerificationCode(email, purpose)
	if err != nil {
		if s.db.IsNotFound(err) {
			return ErrInvalidCode
		}
		return err
	}

	if record.Expired(s.now()) {
		return ErrInvalidCode
	}

	if subtle.ConstantTimeCompare([]byte(record.Code), []byte(code)) != 1 {
		record.Attempts++
		if record.Attempts < MaxAttempts {
			return s.miss(record, s.db.Save(record))
		}

		s.logger.WithFields(logrus.Fields{"purpose": purpose, "email": email}).Warn("verification code revoked after too many attempts")
		return s.miss(record, s.db.Delete(record))
	}

	return errors.Wrap(s.db.Delete(record), "could not consume verification code")
}

func (s *Service) miss(record *model.VerificationCode, err error) error {
	if err != nil {
		return errors.Wrap(err, "could not record verification attempt")
	}
	return ErrInvalidCode
}

func generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
