package main

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"ongelEstate/internal/auth"
	"ongelEstate/internal/config"
	"ongelEstate/internal/database"
)

// Bootstraps the first admin account with a one-time random password.
func main() {
	var (
		email     = flag.String("email", "", "initial admin email (required)")
		firstName = flag.String("first-name", "Admin", "admin first name")
		lastName  = flag.String("last-name", "", "admin last name")
		dbHost    = flag.String("db-host", "", "database host (optional, defaults to DATABASE_HOST)")
		dbPort    = flag.Int("db-port", 0, "database port (optional, defaults to DATABASE_PORT)")
		dbName    = flag.String("db-name", "", "database name (optional, defaults to POSTGRES_DB)")
		dbUser    = flag.String("db-user", "", "database user (optional, defaults to POSTGRES_USER)")
		dbPass    = flag.String("db-password", "", "database password (optional, defaults to POSTGRES_PASSWORD)")
		sslMode   = flag.String("db-sslmode", "", "database sslmode (optional, defaults to DATABASE_SSLMODE)")
	)
	flag.Parse()

	addr := strings.ToLower(strings.TrimSpace(*email))
	if addr == "" {
		log.Fatal("missing required flag: --email")
	}

	dbCfg, err := loadDatabaseConfig(*dbHost, *dbPort, *dbName, *dbUser, *dbPass, *sslMode)
	if err != nil {
		log.Fatalf("load database config: %v", err)
	}

	db, err := database.InitDatabase(dbCfg)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}

	var existing database.User
	switch err := db.Where("email = ?", addr).First(&existing).Error; {
	case err == nil:
		log.Fatalf("user %q already exists", addr)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		log.Fatalf("query user: %v", err)
	}

	password, err := generateRandomPassword(24)
	if err != nil {
		log.Fatalf("generate password: %v", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	user := database.User{
		Email:        addr,
		PasswordHash: hashed,
		FirstName:    *firstName,
		LastName:     *lastName,
		Role:         database.RoleAdmin,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		log.Fatalf("create user: %v", err)
	}

	fmt.Printf("initial admin account created:\n")
	fmt.Printf("email: %s\n", addr)
	fmt.Printf("password: %s\n", password)
	fmt.Printf("note: log in and change this password immediately (it is shown only once).\n")
}

func loadDatabaseConfig(host string, port int, name, user, password, sslmode string) (config.DatabaseConfig, error) {
	if strings.TrimSpace(host) == "" {
		host = os.Getenv("DATABASE_HOST")
	}
	if port <= 0 {
		if env := strings.TrimSpace(os.Getenv("DATABASE_PORT")); env != "" {
			p, err := strconv.Atoi(env)
			if err != nil {
				return config.DatabaseConfig{}, fmt.Errorf("parse DATABASE_PORT: %w", err)
			}
			port = p
		}
	}
	if strings.TrimSpace(name) == "" {
		name = os.Getenv("POSTGRES_DB")
	}
	if strings.TrimSpace(user) == "" {
		user = os.Getenv("POSTGRES_USER")
	}
	if strings.TrimSpace(password) == "" {
		password = os.Getenv("POSTGRES_PASSWORD")
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = os.Getenv("DATABASE_SSLMODE")
	}

	if strings.TrimSpace(host) == "" {
		host = "localhost"
	}
	if port <= 0 {
		port = 5432
	}
	if strings.TrimSpace(sslmode) == "" {
		sslmode = "disable"
	}
	if strings.TrimSpace(name) == "" {
		return config.DatabaseConfig{}, errors.New("database name is required (POSTGRES_DB)")
	}
	if strings.TrimSpace(user) == "" {
		return config.DatabaseConfig{}, errors.New("database user is required (POSTGRES_USER)")
	}
	if strings.TrimSpace(password) == "" {
		return config.DatabaseConfig{}, errors.New("database password is required (POSTGRES_PASSWORD)")
	}

	return config.DatabaseConfig{
		Host:     host,
		Port:     port,
		Name:     name,
		User:     user,
		Password: password,
		SSLMode:  sslmode,
	}, nil
}

func generateRandomPassword(bytesLen int) (string, error) {
	if bytesLen <= 0 {
		bytesLen = 24
	}
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
