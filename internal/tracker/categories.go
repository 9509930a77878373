package tracker

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"budgettracker/internal/store"
	"budgettracker/models"

	"github.com/google/uuid"
)

const maxCategoryName = 100

var colorRE = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// CategoryInput carries create or partial update fields. Nil fields are
// left unchanged on update.
type CategoryInput struct {
	Name  *string
	Color *string
}

// DeleteCategoryResult is returned by DeleteCategory.
type DeleteCategoryResult struct {
	DeletedCategoryID          uuid.UUID `json:"deletedCategoryId"`
	DeletedBudgetsCount        int64     `json:"deletedBudgetsCount"`
	UncategorizedExpensesCount int64     `json:"uncategorizedExpensesCount"`
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name", "name is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryName {
		return "", invalid("name", "name must be at most 100 characters")
	}
	return name, nil
}

func cleanColor(color string) (string, error) {
	color = strings.TrimSpace(color)
	if color == "" {
		return models.DefaultCategoryColor, nil
	}
	if !colorRE.MatchString(color) {
		return "", invalid("color", "color must be a hex value like #A1B2C3")
	}
	return color, nil
}

func (s *Service) ListCategories(ctx context.Context, userID uuid.UUID) ([]models.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

func (s *Service) Category(ctx context.Context, userID, id uuid.UUID) (*models.Category, error) {
	c, err := s.store.CategoryByID(ctx, userID, id)
	if err != nil {
		return nil, mapNotFound(err, "Category")
	}
	return c, nil
}

// CategoryByName finds a category ignoring case, used by the importer.
func (s *Service) CategoryByName(ctx context.Context, userID uuid.UUID, name string) (*models.Category, error) {
	c, err := s.store.CategoryByName(ctx, userID, name)
	if err != nil {
		return nil, mapNotFound(err, "Category")
	}
	return c, nil
}

func (s *Service) CreateCategory(ctx context.Context, userID uuid.UUID, in CategoryInput) (*models.Category, error) {
	var name, color string
	if in.Name != nil {
		name = *in.Name
	}
	if in.Color != nil {
		color = *in.Color
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if color, err = cleanColor(color); err != nil {
		return nil, err
	}
	c := &models.Category{UserID: userID, Name: name, Color: color}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory applies the non-nil fields of in.
func (s *Service) UpdateCategory(ctx context.Context, userID, id uuid.UUID, in CategoryInput) (*models.Category, error) {
	c, err := s.Category(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if c.Name, err = cleanName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Color != nil {
		if c.Color, err = cleanColor(*in.Color); err != nil {
			return nil, err
		}
	}
	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, mapNotFound(err, "Category")
	}
	return c, nil
}

// DeleteCategory removes the category together with its budgets and leaves
// its expenses uncategorized, all in one transaction.
func (s *Service) DeleteCategory(ctx context.Context, userID, id uuid.UUID) (DeleteCategoryResult, error) {
	res, err := s.store.DeleteCategory(ctx, userID, id)
	if err != nil {
		return DeleteCategoryResult{}, mapNotFound(err, "Category")
	}
	s.logger.InfoContext(ctx, "category deleted",
		"user_id", userID, "category_id", id,
		"budgets", res.DeletedBudgets, "expenses", res.UncategorizedExpenses)
	return DeleteCategoryResult{
		DeletedCategoryID:          id,
		DeletedBudgetsCount:        res.DeletedBudgets,
		UncategorizedExpensesCount: res.UncategorizedExpenses,
	}, nil
}

// ownedCategory resolves a category referenced from a request body.
func (s *Service) ownedCategory(ctx context.Context, userID uuid.UUID, field, raw string) (*models.Category, error) {
	id, err := parseRef(field, raw)
	if err != nil {
		return nil, err
	}
	c, err := s.store.CategoryByID(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, invalid(field, "category not found")
	}
	return c, err
}
