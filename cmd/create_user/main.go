package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"budgettracker/internal/config"
	"budgettracker/internal/logging"
	"budgettracker/internal/store"
	"budgettracker/internal/tracker"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Println("usage: go run ./cmd/create_user <email> <password> [full name]")
		os.Exit(2)
	}
	in := tracker.SignupInput{Email: os.Args[1], Password: os.Args[2]}
	if len(os.Args) > 3 {
		in.FullName = os.Args[3]
	}

	cfg := config.Load()
	st, err := store.Open(store.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		log.Fatalf("failed to open db: %v", err)
	}
	defer st.Close()
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	svc := tracker.New(st, nil, logging.Discard())
	ctx := context.Background()
	if existing, err := svc.UserByEmail(ctx, in.Email); err == nil {
		fmt.Printf("user %s already exists (id=%s)\n", existing.Email, existing.ID)
		return
	}
	user, err := svc.Signup(ctx, in)
	if err != nil {
		var verr *tracker.ValidationError
		if errors.As(err, &verr) {
			log.Fatalf("%s: %s", verr.Field, verr.Reason)
		}
		log.Fatalf("failed to create user: %v", err)
	}
	fmt.Printf("created user %s id=%s\n", user.Email, user.ID)
}
