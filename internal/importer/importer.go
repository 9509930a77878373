// Package importer loads expenses from CSV files dropped into a directory.
// Each file holds rows of date,category,amount,notes; the category is
// matched by name without regard to case. Imported files are renamed with
// a .done suffix so a watcher never processes them twice.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"budgettracker/internal/tracker"
	"budgettracker/pkg/budget"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const doneSuffix = ".done"

// Row is one parsed CSV line.
type Row struct {
	Line     int
	Date     string
	Category string
	Amount   decimal.Decimal
	Notes    string
}

// Result counts what happened to the rows of a file.
type Result struct {
	File       string
	Imported   int
	Failed     int
	OverBudget int
}

// ParseCSV reads date,category,amount[,notes] records. A leading header
// row whose first column is "date" is skipped.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(rows) == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
			continue
		}
		if len(rec) < 3 {
			return nil, fmt.Errorf("line %d: expected date,category,amount[,notes], got %d columns", line, len(rec))
		}
		date := strings.TrimSpace(rec[0])
		if _, err := budget.ParseDate(date); err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q", line, date)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[2]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid amount %q", line, rec[2])
		}
		row := Row{Line: line, Date: date, Category: strings.TrimSpace(rec[1]), Amount: amount}
		if len(rec) > 3 {
			row.Notes = strings.TrimSpace(rec[3])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Importer writes parsed rows as expenses of one user.
type Importer struct {
	svc    *tracker.Service
	userID uuid.UUID
	logger *slog.Logger
	// DryRun resolves categories but stores nothing and leaves files in place.
	DryRun bool
}

func New(svc *tracker.Service, userID uuid.UUID, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{svc: svc, userID: userID, logger: logger}
}

// ImportFile imports every row of path. Rows that fail are logged and
// counted; the file is marked done once all its rows were attempted.
func (im *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	res := Result{File: filepath.Base(path)}
	f, err := os.Open(path)
	if err != nil {
		return res, err
	}
	rows, err := ParseCSV(f)
	f.Close()
	if err != nil {
		return res, fmt.Errorf("%s: %w", res.File, err)
	}

	categories := map[string]string{}
	for _, row := range rows {
		log := im.logger.With("file", res.File, "line", row.Line)
		key := strings.ToLower(row.Category)
		catID, ok := categories[key]
		if !ok {
			c, err := im.svc.CategoryByName(ctx, im.userID, row.Category)
			if err != nil {
				res.Failed++
				log.Warn("skipping row", "category", row.Category, "error", err)
				continue
			}
			catID = c.ID.String()
			categories[key] = catID
		}
		if im.DryRun {
			res.Imported++
			continue
		}
		amount, date, notes := row.Amount, row.Date, row.Notes
		out, err := im.svc.CreateExpense(ctx, im.userID, tracker.ExpenseInput{
			Category: &catID,
			Amount:   &amount,
			Date:     &date,
			Notes:    &notes,
		})
		if err != nil {
			res.Failed++
			log.Warn("skipping row", "error", err)
			continue
		}
		res.Imported++
		if out.Status == budget.OverBudget {
			res.OverBudget++
		}
	}

	if !im.DryRun {
		if err := os.Rename(path, path+doneSuffix); err != nil {
			return res, fmt.Errorf("mark %s done: %w", res.File, err)
		}
	}
	im.logger.Info("imported file", "file", res.File, "imported", res.Imported, "failed", res.Failed, "over_budget", res.OverBudget, "dry_run", im.DryRun)
	return res, nil
}

// ImportDir imports every pending CSV file of dir in name order.
func (im *Importer) ImportDir(ctx context.Context, dir string) ([]Result, error) {
	names, err := listCSVFiles(dir)
	if err != nil {
		return nil, err
	}
	var results []Result
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := im.ImportFile(ctx, filepath.Join(dir, name))
		if err != nil {
			im.logger.Error("import failed", "file", name, "error", err)
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// Watch imports CSV files as they appear in dir until ctx is cancelled.
// A file is picked up once it has not changed for a short while.
func (im *Importer) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}
	im.logger.Info("watching for csv files", "dir", dir)

	pending := map[string]time.Time{}
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isCSV(ev.Name) {
				continue
			}
			pending[filepath.Base(ev.Name)] = time.Now()
		case <-ticker.C:
			now := time.Now()
			ready := make([]string, 0, len(pending))
			for name, t := range pending {
				if now.Sub(t) > 300*time.Millisecond { // stable
					ready = append(ready, name)
					delete(pending, name)
				}
			}
			sort.Strings(ready)
			for _, name := range ready {
				if _, err := im.ImportFile(ctx, filepath.Join(dir, name)); err != nil {
					im.logger.Error("import failed", "file", name, "error", err)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.logger.Warn("watch error", "error", err)
		}
	}
}

func listCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isCSV(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
