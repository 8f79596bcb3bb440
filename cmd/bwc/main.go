package main

import (
	"fmt"
	"os"

	"github.com/mdouchement/bluewiki/internal/client"
	"github.com/spf13/cobra"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	html bool
)

func main() {
	c := &cobra.Command{
		Use:     "bwc",
		Short:   "Blue Wiki client",
		Version: fmt.Sprintf("%s - build %.7s @ %s", version, revision, date),
		Args:    cobra.NoArgs,
	}
	c.AddCommand(loginCmd)
	c.AddCommand(logoutCmd)
	c.AddCommand(lsCmd)
	catCmd.Flags().BoolVarP(&html, "html", "", false, "Print the HTML rendering")
	c.AddCommand(catCmd)
	c.AddCommand(searchCmd)

	if err := c.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var (
	loginCmd = &cobra.Command{
		Use:   "login",
		Short: "Login to the Blue Wiki server",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Login()
		},
	}

	logoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Logout from a Blue Wiki server session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Logout()
		},
	}

	lsCmd = &cobra.Command{
		Use:   "ls [PATH]",
		Short: "List the folders and pages of a path",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			return client.List(os.Stdout, path)
		},
	}

	catCmd = &cobra.Command{
		Use:   "cat PATH",
		Short: "Print an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Cat(os.Stdout, args[0], html)
		},
	}

	searchCmd = &cobra.Command{
		Use:   "search QUERY",
		Short: "Search articles",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return client.Search(os.Stdout, args[0])
		},
	}
)
