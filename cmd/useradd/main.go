// Command useradd provisions a staff account. Accounts are never created
// through the HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"supply-cart/internal/config"
	"supply-cart/internal/database"
	"supply-cart/internal/model"
	"supply-cart/internal/repository"
	"supply-cart/internal/service"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configFile, username, password, name string

	flagSet := pflag.NewFlagSet("useradd", pflag.ContinueOnError)
	flagSet.StringVar(&configFile, "config", "", "path to a configuration file")
	flagSet.StringVarP(&username, "username", "u", "", "login name of the new account")
	flagSet.StringVarP(&password, "password", "p", "", "password of the new account")
	flagSet.StringVarP(&name, "name", "n", "", "display name (defaults to the username)")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if username == "" || password == "" {
		return fmt.Errorf("--username and --password are required")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := config.NewLogger(cfg.Logger, os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}
	defer pool.Close()

	auth, err := service.NewAuthService(repository.NewUserRepository(pool, logger), cfg.Auth.AdminUsername, cfg.Auth.BcryptCost, logger)
	if err != nil {
		return err
	}

	user, err := auth.CreateUser(ctx, username, password, name)
	if err != nil {
		if errors.Is(err, model.ErrUserExists) {
			return fmt.Errorf("user %q already exists", username)
		}
		return err
	}

	fmt.Printf("Created user %s (%s)\n", user.Username, user.Name)
	return nil
}
