package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"aid-relief-server/config"
)

// seedAdmin bootstraps the first admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD. It is a no-op when the variables are unset or an
// admin already exists.
func seedAdmin() {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		return
	}

	dbCfg := config.AppConfig.Database
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		dbCfg.Host, dbCfg.Port, dbCfg.User, dbCfg.Password, dbCfg.Name, dbCfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Printf("⚠️ Admin seed skipped, connection failed: %v", err)
		return
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Printf("⚠️ Admin seed skipped, ping failed: %v", err)
		return
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE role = 'admin'").Scan(&count); err != nil {
		log.Printf("⚠️ Admin seed skipped, count failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("⚠️ Admin account already exists. Skipping seed.")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("⚠️ Admin seed skipped, hashing failed: %v", err)
		return
	}

	now := time.Now().UTC()
	_, err = db.Exec(`
		INSERT INTO users (id, email, full_name, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 'admin', true, $5, $5)`,
		uuid.NewString(), adminEmail, "Administrator", string(hash), now)
	if err != nil {
		log.Printf("❌ Admin seed failed: %v", err)
		return
	}

	log.Printf("✅ Admin account seeded: %s", adminEmail)
}
