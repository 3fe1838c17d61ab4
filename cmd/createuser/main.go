// Command createuser provisions an account from the shell, for bootstrap
// and support work where the HTTP API is not available.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"

	"github.com/jfks18/apiVisitor/internal/account"
	"github.com/jfks18/apiVisitor/internal/config"
	"github.com/jfks18/apiVisitor/internal/store"
)

func main() {
	var (
		username = flag.String("username", "", "username (required)")
		password = flag.String("password", "", "password (required)")
		email    = flag.String("email", "", "email address")
		phone    = flag.String("phone", "", "phone number")
		deptID   = flag.Int64("dept-id", 0, "department id")
		role     = flag.Int64("role", 2, "role id")
		status   = flag.String("status", "inactive", "account status")
		profID   = flag.Int64("prof-id", 0, "professor id to link")
	)
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "usage: createuser -username <name> -password <pass> [-email ...] [-dept-id N] [-role N] [-prof-id N]")
		os.Exit(2)
	}

	cfg := config.Load()
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	repo := account.NewRepository(db.Client)
	ctx := context.Background()

	if *profID > 0 {
		ok, err := repo.ProfessorExists(ctx, *profID)
		if err != nil {
			log.Fatalf("professor lookup failed: %v", err)
		}
		if !ok {
			log.Fatalf("professor %d not found", *profID)
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), 10)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var emailPtr, phonePtr *string
	if *email != "" {
		emailPtr = email
	}
	if *phone != "" {
		phonePtr = phone
	}
	var deptPtr *int64
	if *deptID > 0 {
		deptPtr = deptID
	}

	id, err := repo.Create(ctx, *username, emailPtr, phonePtr, string(hashed), deptPtr, *status, *role)
	if err != nil {
		if errors.Is(err, account.ErrDuplicateUser) {
			log.Fatalf("username or email already exists")
		}
		log.Fatalf("create user failed: %v", err)
	}

	if *profID > 0 {
		if _, err := repo.SetProfessorLink(ctx, id, *profID); err != nil {
			log.Fatalf("user %d created but professor link failed: %v", id, err)
		}
	}

	fmt.Printf("created user %d (%s) role=%d status=%s\n", id, *username, *role, *status)
}
