package main

import (
	"fmt"
	"os"
	"strconv"

	"storefront/internal/checkout"

	"github.com/spf13/cobra"
)

func (c *cli) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in; the password may also come from STOREFRONT_PASSWORD",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("STOREFRONT_PASSWORD")
			}
			s, err := c.app.session.Login(cmd.Context(), c.app.client, username, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", s.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.session.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func (c *cli) addressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Manage the address book; positions start at 1",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show saved addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := c.app.addresses.List(cmd.Context())
			if err != nil {
				return err
			}
			printAddresses(cmd.OutOrStdout(), book)
			return nil
		},
	}

	var addr checkout.Address
	var makeDefault bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Save a new address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := c.app.addresses.Add(cmd.Context(), addr, makeDefault)
			if err != nil {
				return err
			}
			printAddresses(cmd.OutOrStdout(), book)
			return nil
		},
	}
	addressFlags(add, &addr)
	add.Flags().BoolVar(&makeDefault, "default", false, "also make it the default address")

	var changed checkout.Address
	update := &cobra.Command{
		Use:   "update <position>",
		Short: "Replace a saved address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			book, err := c.app.addresses.Update(cmd.Context(), idx, changed)
			if err != nil {
				return err
			}
			printAddresses(cmd.OutOrStdout(), book)
			return nil
		},
	}
	addressFlags(update, &changed)

	remove := &cobra.Command{
		Use:   "remove <position>",
		Short: "Delete a saved address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			book, err := c.app.addresses.Remove(cmd.Context(), idx)
			if err != nil {
				return err
			}
			printAddresses(cmd.OutOrStdout(), book)
			return nil
		},
	}

	setDefault := &cobra.Command{
		Use:   "default <position>",
		Short: "Make a saved address the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parsePosition(args[0])
			if err != nil {
				return err
			}
			book, err := c.app.addresses.SetDefault(cmd.Context(), idx)
			if err != nil {
				return err
			}
			printAddresses(cmd.OutOrStdout(), book)
			return nil
		},
	}

	cmd.AddCommand(list, add, update, remove, setDefault)
	return cmd
}

func addressFlags(cmd *cobra.Command, addr *checkout.Address) {
	f := cmd.Flags()
	f.StringVar(&addr.FirstName, "first-name", "", "first name")
	f.StringVar(&addr.LastName, "last-name", "", "last name")
	f.StringVar(&addr.Email, "email", "", "email")
	f.StringVar(&addr.Phone, "phone", "", "phone")
	f.StringVar(&addr.Street, "street", "", "street and number")
	f.StringVar(&addr.City, "city", "", "city")
	f.StringVar(&addr.PostalCode, "postal-code", "", "postal code")
	f.StringVar(&addr.Country, "country", "", "country")
}

// parsePosition turns a 1-based position into an index.
func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q", s)
	}
	return n - 1, nil
}
