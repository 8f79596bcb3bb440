package client

import (
	"fmt"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mdouchement/bluewiki/pkg/libwiki"
	"github.com/pkg/errors"
)

// Login connects to a Blue Wiki server.
func Login() error {
	cfg := Config{}

	endpoint, err := readline.Line("Endpoint: ")
	if err != nil {
		return errors.Wrap(err, "could not read endpoint from stdin")
	}
	cfg.Endpoint = strings.TrimSpace(endpoint)

	client, err := libwiki.NewDefaultClient(cfg.Endpoint)
	if err != nil {
		return errors.Wrap(err, "could not reach given endpoint")
	}

	version, err := client.Version()
	if err != nil {
		return errors.Wrap(err, "could not reach given endpoint")
	}
	fmt.Println("Blue Wiki server", version)

	cfg.Email, err = readline.Line("Email: ")
	if err != nil {
		return errors.Wrap(err, "could not read email from stdin")
	}
	cfg.Email = strings.TrimSpace(cfg.Email)

	password, err := readline.Password("Password: ")
	if err != nil {
		return errors.Wrap(err, "could not read password from stdin")
	}

	err = client.Login(cfg.Email, string(password))
	if err != nil {
		return errors.Wrap(err, "could not login")
	}
	cfg.Session = client.Session()
	fmt.Printf("Logged in as %s until %s\n", cfg.Session.User.Name, cfg.Session.ExpireAt.Local())

	return Save(cfg)
}
