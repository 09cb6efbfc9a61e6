package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/edutrack-backend/internal/config"
	"github.com/stemsi/edutrack-backend/internal/database"
	"github.com/stemsi/edutrack-backend/internal/logger"
	"github.com/stemsi/edutrack-backend/internal/model"
	"github.com/stemsi/edutrack-backend/internal/repository"
	"github.com/stemsi/edutrack-backend/internal/service"
	"golang.org/x/term"
)

// create-user adds an account, or resets the password of an existing one
// when run with -reset.
func main() {
	reset := len(os.Args) > 1 && os.Args[1] == "-reset"

	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect Backends ──────────────────────────────────────────────
	backends, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open backends")
	}
	defer backends.Close()

	authService := service.NewAuthService(cfg, backends.Users, backends.Redis, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	if reset {
		fmt.Println("=== Reset User Password ===")
	} else {
		fmt.Println("=== Create New User ===")
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		fmt.Println("Error: a valid email is required")
		os.Exit(1)
	}

	var name string
	if !reset {
		fmt.Print("Enter Name: ")
		name, _ = reader.ReadString('\n')
		name = strings.TrimSpace(name)
		if len(name) < 2 {
			fmt.Println("Error: Name must be at least 2 characters")
			os.Exit(1)
		}
	}

	password := readPassword("Enter Password: ")
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		os.Exit(1)
	}
	if readPassword("Confirm Password: ") != password {
		fmt.Println("Error: Passwords do not match")
		os.Exit(1)
	}

	if reset {
		resetPassword(ctx, backends.Users, authService, email, password)
		return
	}

	res, err := authService.Register(ctx, model.RegisterRequest{Email: email, Name: name, Password: password})
	if errors.Is(err, service.ErrEmailTaken) {
		fmt.Println("Error: a user with this email already exists (use -reset to change the password)")
		os.Exit(1)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("User created. ID: %s\n", res.User.ID)
}

func resetPassword(ctx context.Context, users database.UserStore, authService *service.AuthService, email, password string) {
	user, err := users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		fmt.Println("Error: no user with this email")
		os.Exit(1)
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	hash, err := authService.HashPassword(password)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if err := users.UpdatePassword(ctx, user.ID, hash); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	// Existing tokens keep the old session alive until logout; end it now.
	if err := authService.Logout(ctx, user.ID); err != nil {
		fmt.Printf("Warning: could not end the active session: %v\n", err)
	}

	fmt.Printf("Password reset for %s\n", user.Email)
}

func readPassword(prompt string) string {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	return string(raw)
}
