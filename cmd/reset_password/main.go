package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"budgettracker/internal/config"
	"budgettracker/internal/logging"
	"budgettracker/internal/store"
	"budgettracker/internal/tracker"
)

func main() {
	email := flag.String("email", "", "email of the account to reset")
	password := flag.String("password", "", "new plaintext password (min 6 chars)")
	flag.Parse()
	if *email == "" || *password == "" {
		log.Fatal("--email and --password are required")
	}

	cfg := config.Load()
	st, err := store.Open(store.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer st.Close()

	svc := tracker.New(st, nil, logging.Discard())
	if err := svc.ResetPassword(context.Background(), *email, *password); err != nil {
		log.Fatalf("reset failed: %v", err)
	}
	fmt.Printf("Password reset for %s\n", tracker.NormalizeEmail(*email))
}
