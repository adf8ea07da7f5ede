// Command create-admin creates an ADMIN account, or promotes an existing
// account to ADMIN. The password may also come from ADMIN_PASSWORD.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"os"
	"time"

	"carpool/internal/auth"
	intconfig "carpool/internal/config"
	intdb "carpool/internal/db"
	"carpool/internal/logger"
	"carpool/internal/repositories"
	"carpool/internal/services"
)

func main() {
	email := flag.String("email", "", "admin email (required)")
	password := flag.String("password", os.Getenv("ADMIN_PASSWORD"), "admin password, used only when the account is created")
	firstName := flag.String("first-name", "Admin", "first name for a new account")
	lastName := flag.String("last-name", "User", "last name for a new account")
	migrate := flag.Bool("migrate", false, "apply migrations before creating the admin")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	env := intconfig.LoadEnv()
	log, err := logger.New(env.LogLevel, env.Release())
	if err != nil {
		stdlog.Fatalf("init logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	if *migrate {
		conn, err := intconfig.OpenMigrationConn(env)
		if err != nil {
			log.Fatal("open migration connection", logger.Error(err))
		}
		if err := intdb.Up(env.MigrationDriver(), conn); err != nil {
			log.Fatal("run migrations", logger.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := intconfig.OpenDB(ctx, env)
	if err != nil {
		log.Fatal("connect database", logger.Error(err))
	}
	defer db.Close()

	svc := services.AuthService{
		Users:  repositories.UserRepository{DB: db},
		Tokens: auth.NewTokenManager(env.JWTSecret),
		Log:    log,
	}
	u, created, err := svc.EnsureAdmin(ctx, services.RegisterInput{
		FirstName:     *firstName,
		LastName:      *lastName,
		Email:         *email,
		Password:      *password,
		DriverLicense: "-",
		Gender:        "-",
	})
	if err != nil {
		log.Fatal("ensure admin", logger.String("email", *email), logger.Error(err))
	}
	if created {
		log.Info("admin account created", logger.Int64("user_id", u.ID), logger.String("email", u.Email))
		return
	}
	log.Info("existing account promoted to admin", logger.Int64("user_id", u.ID), logger.String("email", u.Email))
}
