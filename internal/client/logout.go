package client

import (
	"time"

	"github.com/pkg/errors"
)

// Logout disconnects from a Blue Wiki server.
func Logout() error {
	client, cfg, err := connect()
	if err != nil {
		return err
	}

	//
	//

	if cfg.Session.Expired(time.Now()) {
		return errors.Wrap(Remove(), "could not remove credential file")
	}

	if err = client.Logout(); err != nil {
		return errors.Wrap(err, "could not logout")
	}

	return errors.Wrap(Remove(), "could not remove credential file")
}
