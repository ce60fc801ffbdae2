package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"ukonnect/internal/api"
)

func newLoginCmd(get func() *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session on this device",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := get()
			auth, err := a.auth.Login(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("login gagal: %s", api.UserMessage(err, "Terjadi kesalahan"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Login berhasil (user id %d)\n", auth.UserID)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func newRegisterCmd(get func() *app) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := get().auth.Register(cmd.Context(), username, password)
			if err != nil {
				return fmt.Errorf("registrasi gagal: %s", api.UserMessage(err, "Terjadi kesalahan"))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registrasi berhasil (user id %d). Silakan login.\n", id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return cmd
}

func newLogoutCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := get().auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logout berhasil")
			return nil
		},
	}
}

func newWhoamiCmd(get func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cur := get().sessions.Current()
			if cur.IsZero() {
				return errNotLoggedIn
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user id: %d\n", cur.UserID)
			if exp, ok := cur.ExpiresAt(); ok {
				fmt.Fprintf(out, "token expires: %s\n", exp.Local().Format(time.DateTime))
			}
			return nil
		},
	}
}
