// Command seed-user creates a login account in the SQLite store. The API has
// no self-registration; accounts are provisioned from the machine that hosts
// the database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"golang.org/x/term"

	"divebooks/internal/auth"
	"divebooks/internal/cli"
	"divebooks/internal/core"
	"divebooks/internal/ledger"
	applog "divebooks/internal/log"
)

func main() {
	username := flag.String("username", "", "login username (required)")
	name := flag.String("name", "", "display name")
	role := flag.String("role", string(core.RoleOffice), "role: admin, owner or office")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: seed-user -username <name> [-name <display>] [-role <role>]")
		os.Exit(2)
	}
	if !core.Role(*role).Valid() {
		fmt.Fprintf(os.Stderr, "invalid role %q: must be admin, owner or office\n", *role)
		os.Exit(2)
	}

	password, err := promptPassword()
	if err != nil {
		logger.Error("Failed reading password", "error", err)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		logger.Error("Failed hashing password", "error", err)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	user, err := repo.CreateUser(context.Background(), core.User{
		Username:     *username,
		PasswordHash: hash,
		Name:         *name,
		Role:         core.Role(*role),
	})
	if err != nil {
		if errors.Is(err, ledger.ErrDuplicateUser) {
			fmt.Fprintf(os.Stderr, "username %q is already taken\n", *username)
			os.Exit(1)
		}
		logger.Error("Failed creating user", "error", err, "username", *username)
		os.Exit(1)
	}

	logger.Info("User created", "id", user.ID, "username", user.Username, "role", user.Role)
}

func promptPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("password cannot be empty")
	}
	return string(first), nil
}
