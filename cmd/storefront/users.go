package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"storefront/internal/config"
	"storefront/internal/models"
	"storefront/internal/password"
	"storefront/internal/repository"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage storefront users.",
}

var (
	adminName          string
	adminEmail         string
	adminPassword      string
	adminPasswordStdin bool
)

// There is no role elevation over HTTP: admins are created only by operator
// command against the database.
var bootstrapAdminCmd = &cobra.Command{
	Use:   "bootstrap-admin",
	Short: "Create an admin user.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.ToLower(strings.TrimSpace(adminEmail))
		if email == "" {
			return errors.New("--email is required")
		}
		name := strings.TrimSpace(adminName)
		if name == "" {
			name = "Administrator"
		}

		plaintext, err := resolveAdminPassword()
		if err != nil {
			return err
		}

		logger := zap.NewNop()

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
		if err != nil {
			return err
		}
		defer db.Close()

		users := repository.NewUserRepository(db, logger)
		if _, err := users.GetUserByEmail(email); err == nil {
			return fmt.Errorf("user already exists: %s", email)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		digest, err := password.Hash(plaintext)
		if err != nil {
			return err
		}

		user := &models.User{
			Name:         name,
			Email:        email,
			PasswordHash: digest,
			Role:         models.RoleAdmin,
		}
		if err := users.CreateUser(user); err != nil {
			return err
		}

		cmd.Printf("created admin user: %s (id %d)\n", email, user.ID)
		return nil
	},
}

func resolveAdminPassword() (string, error) {
	if adminPasswordStdin && adminPassword != "" {
		return "", errors.New("--password-stdin and --password are mutually exclusive")
	}

	if adminPasswordStdin {
		reader := bufio.NewReader(os.Stdin)
		raw, err := reader.ReadString('\n')
		if err != nil && raw == "" {
			return "", err
		}
		plaintext := strings.TrimRight(raw, "\r\n")
		if plaintext == "" {
			return "", errors.New("empty password on stdin")
		}
		return plaintext, nil
	}

	if adminPassword != "" {
		return adminPassword, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", errors.New("empty password")
	}
	return string(raw), nil
}

func init() {
	bootstrapAdminCmd.Flags().StringVar(&adminName, "name", "", "display name for the admin user")
	bootstrapAdminCmd.Flags().StringVar(&adminEmail, "email", "", "email address for the admin user")
	bootstrapAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password for the admin user")
	bootstrapAdminCmd.Flags().BoolVar(&adminPasswordStdin, "password-stdin", false, "read the password from stdin")
	usersCmd.AddCommand(bootstrapAdminCmd)
}
