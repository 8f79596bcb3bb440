package main

import (
	"context"
	"fmt"
	"hash"
	"io"
	"log"
	"net"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf"
	"github.com/mdouchement/bluewiki/internal/config"
	"github.com/mdouchement/bluewiki/internal/database"
	"github.com/mdouchement/bluewiki/internal/mailer"
	"github.com/mdouchement/bluewiki/internal/server"
	"github.com/mdouchement/bluewiki/internal/storage"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &coral.Command{
		Use:     "bluewiki",
		Short:   "Blue Wiki server",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    coral.ExactArgs(0),
	}
	c.PersistentFlags().StringVarP(&cfg, "config", "c", "", "Configuration file")

	c.AddCommand(initCmd)
	c.AddCommand(reindexCmd)
	c.AddCommand(serverCmd)
	c.AddCommand(rmuserCmd)
	c.AddCommand(consoleCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func kdf(l int, k []byte) []byte {
	nhash := func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	}

	payload := make([]byte, l)

	kdf := hkdf.New(nhash, k, nil, []byte("bluewiki jwt"))
	_, err := io.ReadFull(kdf, payload)
	if err != nil {
		panic(err)
	}

	return payload
}

func open(konf *koanf.Koanf) (database.Client, error) {
	db, err := database.Open(konf.String("database.driver"), konf.String("database.path"))
	return db, errors.Wrap(err, "could not open database")
}

func isStorm(konf *koanf.Koanf) bool {
	driver := konf.String("database.driver")
	return driver == "" || driver == "storm"
}

var (
	initCmd = &coral.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := config.Load(cfg)
			if err != nil {
				return err
			}

			if isStorm(konf) {
				return database.StormInit(konf.String("database.path"))
			}

			// Tables are created when the database is opened.
			db, err := open(konf)
			if err != nil {
				return err
			}
			return db.Close()
		},
	}

	//
	reindexCmd = &coral.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := config.Load(cfg)
			if err != nil {
				return err
			}

			if !isStorm(konf) {
				return errors.Errorf("reindex is not supported by the %s driver", konf.String("database.driver"))
			}
			return database.StormReIndex(konf.String("database.path"))
		},
	}

	//
	//
	serverCmd = &coral.Command{
		Use:   "server",
		Short: "Start server",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := config.Load(cfg)
			if err != nil {
				return err
			}

			if len(konf.String("secret_key")) < 16 {
				return errors.New("secret_key not found or too short (16 characters minimum)")
			}

			logger, err := config.NewLogger(konf)
			if err != nil {
				return err
			}

			pinned, err := config.Pinned(konf)
			if err != nil {
				return err
			}

			ttl, err := config.SessionTTL(konf)
			if err != nil {
				return err
			}

			scfg, err := config.Storage(konf)
			if err != nil {
				return err
			}

			blobs, err := storage.Open(context.Background(), scfg)
			if err != nil {
				return errors.Wrap(err, "could not open storage")
			}

			db, err := open(konf)
			if err != nil {
				return err
			}
			defer db.Close()

			engine := server.EchoEngine(server.IOC{
				Version:               version,
				Database:              db,
				Storage:               blobs,
				Mailer:                mailer.New(),
				Logger:                logger,
				NoRegistration:        konf.Bool("no_registration"),
				Pinned:                pinned,
				SigningKey:            kdf(32, konf.MustBytes("secret_key")),
				SessionExpirationTime: ttl,
				MaxUploadSize:         konf.Int64("upload.max_size"),
			})
			server.PrintRoutes(engine)

			address := konf.String("address")
			message := "could not run server"
			logger.Infof("Server listening on %s", address)
			parts := strings.Split(address, ":")
			if len(parts) == 2 && parts[0] == "unix" {
				socketFile := parts[1]
				if _, err := os.Stat(socketFile); err == nil {
					logger.Infof("Removing existing %s", socketFile)
					os.Remove(socketFile)
				}
				defer os.Remove(socketFile)
				listener, err := net.Listen(parts[0], socketFile)
				if err != nil {
					return err
				}
				return errors.Wrap(engine.Server.Serve(listener), message)
			}
			return errors.Wrap(engine.Start(address), message)
		},
	}
)
