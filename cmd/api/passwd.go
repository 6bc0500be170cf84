package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iamasit07/simpage/backend/internal/config"
	"github.com/iamasit07/simpage/backend/internal/service/credential"
	"github.com/iamasit07/simpage/backend/internal/service/session"
	"github.com/iamasit07/simpage/backend/pkg/auth"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func newPasswdCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Reset the admin password",
		Long: `Overwrites the stored admin credential and ends the active admin session.
Use it when the password is lost or may have leaked.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := promptPassword(cmd.OutOrStdout(), os.Stdin)
				if err != nil {
					return err
				}
				password = p
			}
			return runPasswd(cmd.Context(), password, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&password, "password", "p", "", "new password (prompted when omitted)")
	return cmd
}

// promptPassword reads the password without echo on a terminal, or a single
// line from piped input.
func promptPassword(out io.Writer, in *os.File) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(out, "New admin password: ")
	first, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprint(out, "Repeat password: ")
	second, err := readPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}

func runPasswd(ctx context.Context, password string, out io.Writer) error {
	cfg := config.LoadConfig()
	logger := newLogger(cfg)

	kv, err := openBackend(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer kv.close()

	sec := cfg.Security
	credentials := credential.NewService(kv.store, sec.AdminUsername, logger)
	if err := credentials.Reset(ctx, password); err != nil {
		return err
	}

	secret := []byte(sec.TokenSecret)
	if len(secret) == 0 {
		if secret, err = auth.GenerateSecret(); err != nil {
			return err
		}
	}
	tokens := auth.NewTokenIssuer(secret, sec.AccessTokenTTL, sec.RefreshTokenTTL, nil)
	sessions := session.NewAuthService(kv.store, sec, tokens, logger, nil)
	if err := sessions.RevokeUserSessions(ctx, sec.AdminUsername); err != nil {
		return fmt.Errorf("password updated but the active session could not be revoked: %w", err)
	}

	fmt.Fprintf(out, "Password for %q updated, active session revoked.\n", sec.AdminUsername)
	return nil
}
