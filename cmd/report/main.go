package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"budgettracker/internal/config"
	"budgettracker/internal/logging"
	"budgettracker/internal/store"
	"budgettracker/internal/tracker"
	"budgettracker/pkg/budget"
)

func main() {
	email := flag.String("email", "", "email of the user to report for")
	month := flag.String("month", budget.MonthOf(time.Now().UTC()).String(), "month to report (YYYY-MM)")
	list := flag.Bool("list", false, "list the month's expenses")
	months := flag.Int("months", 1, "also print totals of the preceding months up to this many (max 24)")
	flag.Parse()
	if *email == "" {
		log.Fatal("--email is required")
	}

	cfg := config.Load()
	st, err := store.Open(store.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	svc := tracker.New(st, nil, logging.Discard())
	user, err := svc.UserByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("user not found: %v", err)
	}
	sum, err := svc.Summary(ctx, user.ID, *month)
	if err != nil {
		log.Fatalf("summary failed: %v", err)
	}

	fmt.Printf("Report for user=%s month=%s (UTC):\n", user.Email, sum.Month)
	fmt.Printf("  budget=%s spent=%s remaining=%s percent=%d%% status=%s\n",
		sum.Budget, sum.Spent, sum.Remaining, sum.PercentOfBudget, sum.Status)
	for _, c := range sum.Categories {
		fmt.Printf("  %-20s limit=%10s spent=%10s remaining=%10s %s\n", c.Name, c.Limit, c.Spent, c.Remaining, c.Status)
	}

	if *months > 1 {
		trend, err := svc.Trend(ctx, user.ID, sum.Month, *months)
		if err != nil {
			log.Fatalf("trend failed: %v", err)
		}
		fmt.Println("Trend:")
		for _, t := range trend {
			fmt.Printf("  %s budget=%10s spent=%10s percent=%3d%% %s\n", t.Month, t.Budget, t.Spent, t.PercentOfBudget, t.Status)
		}
	}

	if *list {
		expenses, err := svc.ListExpensesForMonth(ctx, user.ID, sum.Month, "")
		if err != nil {
			log.Fatalf("fetch expenses failed: %v", err)
		}
		for _, e := range expenses {
			name := "Uncategorized"
			if e.Category != nil {
				name = e.Category.Name
			}
			fmt.Printf("%s|%s|%s|%s|%s\n", e.ID, e.Date.Format("2006-01-02"), name, e.Amount, e.Notes)
		}
	}
}
