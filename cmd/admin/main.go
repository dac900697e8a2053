// Command admin is the operations CLI: it seeds or promotes admin accounts
// without going through the HTTP signup flow.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"urbaneye/backend/internal/config"
	"urbaneye/backend/internal/models"
	"urbaneye/backend/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	s := storage.NewService(db, nil, zap.NewNop()) // no Redis needed for the CLI
	if err := s.Migrate(); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: admin <command> [args]")
		fmt.Println("Commands:")
		fmt.Println("  create-admin <email> <password> <full-name> <division>")
		fmt.Println("  promote <email> <division>")
		os.Exit(1)
	}

	switch os.Args[1] {
	case "create-admin":
		if len(os.Args) != 6 {
			fmt.Println("Usage: admin create-admin <email> <password> <full-name> <division>")
			os.Exit(1)
		}
		if err := createAdmin(s, os.Args[2], os.Args[3], os.Args[4], os.Args[5]); err != nil {
			log.Fatalf("Error creating admin: %v", err)
		}
		fmt.Printf("Admin %s created for division %s.\n", os.Args[2], os.Args[5])
	case "promote":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin promote <email> <division>")
			os.Exit(1)
		}
		if err := promote(s, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error promoting user: %v", err)
		}
		fmt.Printf("User %s promoted to admin of division %s.\n", os.Args[2], os.Args[3])
	default:
		fmt.Println("Unknown command")
		os.Exit(1)
	}
}

func createAdmin(s storage.Storage, email, password, fullName, division string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	count, err := s.CountUsersByEmail(email)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("email %s already registered", email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return s.CreateUser(&models.User{
		FullName: fullName,
		Email:    email,
		Password: string(hashed),
		Role:     models.RoleAdmin,
		Division: division,
		IsActive: true,
	})
}

func promote(s storage.Storage, email, division string) error {
	user, err := s.GetUserByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	user.Role = models.RoleAdmin
	user.Division = division
	return s.UpdateUser(user)
}
