package cmd

import (
	"errors"
	"io"

	"grimm.is/wingwifi/internal/auth"
)

// RunHashPassword prints a bcrypt hash for sys_admin_password.
func RunHashPassword(w io.Writer, password string) error {
	if password == "" {
		return errors.New("password is empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	Printer.Fprintln(w, hash)
	return nil
}
