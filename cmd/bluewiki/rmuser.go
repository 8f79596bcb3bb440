package main

import (
	"fmt"

	"github.com/mdouchement/bluewiki/internal/config"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

var rmuserCmd = &coral.Command{
	Use:   "rmuser EMAIL",
	Short: "Remove a user and its sessions from the database",
	Args:  coral.ExactArgs(1),
	RunE: func(_ *coral.Command, args []string) error {
		konf, err := config.Load(cfg)
		if err != nil {
			return err
		}

		fmt.Println("Opening", konf.String("database.path"))
		db, err := open(konf)
		if err != nil {
			return err
		}
		defer db.Close()

		// Fetch user
		user, err := db.FindUserByMail(args[0])
		if err != nil {
			if db.IsNotFound(err) {
				fmt.Println("No account for this email")
				return nil
			}
			return errors.Wrap(err, "find user by mail")
		}

		fmt.Println("User found:", user.ID)

		// Revoking user's sessions
		if err = db.DeleteSessionsByUserID(user.ID); err != nil {
			return errors.Wrap(err, "delete sessions")
		}
		fmt.Println("Sessions removed")

		// Delete user, its articles and comments are kept.
		if err = db.Delete(user); err != nil && !db.IsNotFound(err) {
			return errors.Wrap(err, "delete user")
		}
		fmt.Println("User removed")

		return nil
	},
}
