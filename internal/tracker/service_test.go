package tracker

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"budgettracker/internal/logging"
	"budgettracker/internal/notify"
	"budgettracker/internal/store"
	"budgettracker/models"
	"budgettracker/pkg/budget"
	"budgettracker/pkg/money"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type recordingPublisher struct {
	mu     sync.Mutex
	alerts []notify.BudgetAlert
	err    error
}

func (p *recordingPublisher) PublishBudgetAlert(_ context.Context, a notify.BudgetAlert) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, a)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func str(s string) *string { return &s }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

type ServiceTestSuite struct {
	suite.Suite
	svc       *Service
	publisher *recordingPublisher
	ctx       context.Context
	user      *models.User
	other     *models.User
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (suite *ServiceTestSuite) SetupTest() {
	st, err := store.Open(store.Options{Driver: store.DriverSQLite, DSN: filepath.Join(suite.T().TempDir(), "svc.db")})
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), st.Migrate())
	suite.T().Cleanup(func() { _ = st.Close() })

	suite.publisher = &recordingPublisher{}
	suite.svc = New(st, suite.publisher, logging.Discard())
	suite.svc.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	suite.ctx = context.Background()

	suite.user, err = suite.svc.Signup(suite.ctx, SignupInput{Email: "user@example.com", Password: "secret1"})
	require.NoError(suite.T(), err)
	suite.other, err = suite.svc.Signup(suite.ctx, SignupInput{Email: "other@example.com", Password: "secret1"})
	require.NoError(suite.T(), err)
}

func (suite *ServiceTestSuite) category(owner *models.User, name string) *models.Category {
	c, err := suite.svc.CreateCategory(suite.ctx, owner.ID, CategoryInput{Name: str(name)})
	require.NoError(suite.T(), err)
	return c
}

func (suite *ServiceTestSuite) expense(owner *models.User, c *models.Category, amount, date string) *ExpenseResult {
	res, err := suite.svc.CreateExpense(suite.ctx, owner.ID, ExpenseInput{Category: str(c.ID.String()), Amount: dec(amount), Date: str(date)})
	require.NoError(suite.T(), err)
	return res
}

func (suite *ServiceTestSuite) assertField(err error, field string) {
	var ve *ValidationError
	require.True(suite.T(), errors.As(err, &ve), "expected ValidationError, got %v", err)
	assert.Equal(suite.T(), field, ve.Field)
}

func (suite *ServiceTestSuite) TestSignupRules() {
	_, err := suite.svc.Signup(suite.ctx, SignupInput{Email: " USER@example.com ", Password: "another1"})
	assert.ErrorIs(suite.T(), err, ErrEmailTaken)

	_, err = suite.svc.Signup(suite.ctx, SignupInput{Email: "new@example.com", Password: "12345"})
	suite.assertField(err, "password")

	_, err = suite.svc.Signup(suite.ctx, SignupInput{Email: "not-an-email", Password: "123456"})
	suite.assertField(err, "email")

	u, err := suite.svc.Signup(suite.ctx, SignupInput{Email: "New@Example.com", Password: "123456", FullName: " New "})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "new@example.com", u.Email)
	assert.Equal(suite.T(), "New", u.FullName)
}

func (suite *ServiceTestSuite) TestLoginDoesNotRevealAccounts() {
	u, err := suite.svc.Login(suite.ctx, "user@example.com", "secret1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, u.ID)

	_, wrongPassword := suite.svc.Login(suite.ctx, "user@example.com", "nope123")
	_, unknownEmail := suite.svc.Login(suite.ctx, "ghost@example.com", "secret1")
	assert.ErrorIs(suite.T(), wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(suite.T(), unknownEmail, ErrInvalidCredentials)
	assert.Equal(suite.T(), wrongPassword.Error(), unknownEmail.Error())
}

func (suite *ServiceTestSuite) TestResetPassword() {
	require.NoError(suite.T(), suite.svc.ResetPassword(suite.ctx, "user@example.com", "changed1"))
	_, err := suite.svc.Login(suite.ctx, "user@example.com", "changed1")
	assert.NoError(suite.T(), err)
	assert.ErrorIs(suite.T(), suite.svc.ResetPassword(suite.ctx, "ghost@example.com", "changed1"), ErrNotFound)
}

func (suite *ServiceTestSuite) TestCategoryValidationAndUpdate() {
	_, err := suite.svc.CreateCategory(suite.ctx, suite.user.ID, CategoryInput{Name: str("  ")})
	suite.assertField(err, "name")
	_, err = suite.svc.CreateCategory(suite.ctx, suite.user.ID, CategoryInput{Name: str("Food"), Color: str("red")})
	suite.assertField(err, "color")

	c := suite.category(suite.user, "Food")
	assert.Equal(suite.T(), models.DefaultCategoryColor, c.Color)

	updated, err := suite.svc.UpdateCategory(suite.ctx, suite.user.ID, c.ID, CategoryInput{Color: str("#123abc")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Food", updated.Name)
	assert.Equal(suite.T(), "#123abc", updated.Color)

	_, err = suite.svc.UpdateCategory(suite.ctx, suite.other.ID, c.ID, CategoryInput{Name: str("Mine")})
	assert.ErrorIs(suite.T(), err, ErrNotFound)
	assert.Equal(suite.T(), "Category not found", err.Error())
}

func (suite *ServiceTestSuite) TestListCategoriesIsolated() {
	suite.category(suite.user, "Food")
	suite.category(suite.other, "Secret")
	list, err := suite.svc.ListCategories(suite.ctx, suite.user.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 1)
	assert.Equal(suite.T(), "Food", list[0].Name)
}

func (suite *ServiceTestSuite) TestDeleteCategoryReportsCascade() {
	food := suite.category(suite.user, "Food")
	for _, m := range []string{"2024-02", "2024-03"} {
		_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: m, Limit: dec("50")})
		require.NoError(suite.T(), err)
	}
	res := suite.expense(suite.user, food, "10", "2024-03-02")

	out, err := suite.svc.DeleteCategory(suite.ctx, suite.user.ID, food.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), food.ID, out.DeletedCategoryID)
	assert.Equal(suite.T(), int64(2), out.DeletedBudgetsCount)
	assert.Equal(suite.T(), int64(1), out.UncategorizedExpensesCount)

	e, err := suite.svc.Expense(suite.ctx, suite.user.ID, res.Expense.ID)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), e.CategoryID)
}

func (suite *ServiceTestSuite) TestUpsertBudgetValidation() {
	food := suite.category(suite.user, "Food")
	_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-3", Limit: dec("1")})
	suite.assertField(err, "month")
	_, err = suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-03", Limit: dec("-1")})
	suite.assertField(err, "limit")
	_, err = suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-03"})
	suite.assertField(err, "limit")
	_, err = suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: "nope", Month: "2024-03", Limit: dec("1")})
	suite.assertField(err, "categoryId")

	foreign := suite.category(suite.other, "Theirs")
	_, err = suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: foreign.ID.String(), Month: "2024-03", Limit: dec("1")})
	suite.assertField(err, "categoryId")
}

func (suite *ServiceTestSuite) TestUpsertTwiceKeepsLastLimit() {
	food := suite.category(suite.user, "Food")
	_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-03", Limit: dec("100")})
	require.NoError(suite.T(), err)
	b, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-03", Limit: dec("0")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), money.Amount(0), b.Limit)

	list, err := suite.svc.ListBudgets(suite.ctx, suite.user.ID, "2024-03")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 1)
	assert.Equal(suite.T(), money.Amount(0), list[0].Limit)
}

func (suite *ServiceTestSuite) TestOverBudgetAfterSecondExpense() {
	food := suite.category(suite.user, "Food")
	_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-03", Limit: dec("100")})
	require.NoError(suite.T(), err)

	first := suite.expense(suite.user, food, "40", "2024-03-03")
	assert.Equal(suite.T(), budget.WithinBudget, first.Status)
	assert.Equal(suite.T(), money.Units(60), first.Budget.Remaining)
	assert.Empty(suite.T(), suite.publisher.alerts)

	second := suite.expense(suite.user, food, "70", "2024-03-20")
	assert.Equal(suite.T(), budget.OverBudget, second.Status)
	assert.Equal(suite.T(), money.Units(-10), second.Budget.Remaining)
	assert.Equal(suite.T(), money.Units(110), second.Budget.Spent)
	assert.Equal(suite.T(), money.Units(100), second.Budget.Limit)

	require.Len(suite.T(), suite.publisher.alerts, 1)
	alert := suite.publisher.alerts[0]
	assert.Equal(suite.T(), food.ID, alert.CategoryID)
	assert.Equal(suite.T(), "2024-03", alert.Month)
	assert.Equal(suite.T(), money.Units(-10), alert.Remaining)
}

func (suite *ServiceTestSuite) TestPublishFailureDoesNotFailCreate() {
	suite.publisher.err = errors.New("broker down")
	food := suite.category(suite.user, "Food")
	_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-03", Limit: dec("1")})
	require.NoError(suite.T(), err)
	res := suite.expense(suite.user, food, "5", "2024-03-01")
	assert.Equal(suite.T(), budget.OverBudget, res.Status)
}

func (suite *ServiceTestSuite) TestUnbudgetedNeverOver() {
	food := suite.category(suite.user, "Food")
	res := suite.expense(suite.user, food, "999999.99", "2024-03-01")
	assert.Equal(suite.T(), budget.WithinBudget, res.Status)
	assert.Equal(suite.T(), budget.Summary{}, res.Budget)
	assert.Empty(suite.T(), suite.publisher.alerts)
}

func (suite *ServiceTestSuite) TestBudgetOfOtherMonthIgnored() {
	food := suite.category(suite.user, "Food")
	_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-02", Limit: dec("10")})
	require.NoError(suite.T(), err)
	res := suite.expense(suite.user, food, "50", "2024-03-01")
	assert.Equal(suite.T(), budget.WithinBudget, res.Status)
}

func (suite *ServiceTestSuite) TestCreateExpenseValidation() {
	food := suite.category(suite.user, "Food")
	cid := str(food.ID.String())

	_, err := suite.svc.CreateExpense(suite.ctx, suite.user.ID, ExpenseInput{Category: cid, Amount: dec("12.345")})
	suite.assertField(err, "amount")
	_, err = suite.svc.CreateExpense(suite.ctx, suite.user.ID, ExpenseInput{Category: cid, Amount: dec("0")})
	suite.assertField(err, "amount")
	_, err = suite.svc.CreateExpense(suite.ctx, suite.user.ID, ExpenseInput{Category: cid})
	suite.assertField(err, "amount")
	_, err = suite.svc.CreateExpense(suite.ctx, suite.user.ID, ExpenseInput{Category: cid, Amount: dec("1"), Date: str("2024-02-30")})
	suite.assertField(err, "date")
	_, err = suite.svc.CreateExpense(suite.ctx, suite.user.ID, ExpenseInput{Amount: dec("1")})
	suite.assertField(err, "category")
	_, err = suite.svc.CreateExpense(suite.ctx, suite.other.ID, ExpenseInput{Category: cid, Amount: dec("1")})
	suite.assertField(err, "category")
}

func (suite *ServiceTestSuite) TestCreateExpenseDefaultsDateToNow() {
	food := suite.category(suite.user, "Food")
	res, err := suite.svc.CreateExpense(suite.ctx, suite.user.ID, ExpenseInput{Category: str(food.ID.String()), Amount: dec("1.5")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2024-03", res.Expense.Month)
	assert.Equal(suite.T(), money.Cents(150), res.Expense.Amount)
	require.NotNil(suite.T(), res.Expense.Category)
	assert.Equal(suite.T(), "Food", res.Expense.Category.Name)
}

func (suite *ServiceTestSuite) TestMonthListingHandlesLeapDay() {
	food := suite.category(suite.user, "Food")
	leap := suite.expense(suite.user, food, "1", "2024-02-29")
	suite.expense(suite.user, food, "1", "2024-03-01")

	list, err := suite.svc.ListExpensesForMonth(suite.ctx, suite.user.ID, "2024-02", "")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 1)
	assert.Equal(suite.T(), leap.Expense.ID, list[0].ID)

	_, err = suite.svc.ListExpensesForMonth(suite.ctx, suite.user.ID, "", "")
	suite.assertField(err, "month")
}

func (suite *ServiceTestSuite) TestMonthListingByCategory() {
	food := suite.category(suite.user, "Food")
	rent := suite.category(suite.user, "Rent")
	suite.expense(suite.user, food, "1", "2024-03-01")
	suite.expense(suite.user, rent, "2", "2024-03-02")

	list, err := suite.svc.ListExpensesForMonth(suite.ctx, suite.user.ID, "2024-03", rent.ID.String())
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 1)
	assert.Equal(suite.T(), money.Units(2), list[0].Amount)
}

func (suite *ServiceTestSuite) TestRangeSpansMonthBoundary() {
	food := suite.category(suite.user, "Food")
	for _, d := range []string{"2024-01-29", "2024-01-30", "2024-01-31", "2024-02-01", "2024-02-02T23:59:59Z", "2024-02-03"} {
		suite.expense(suite.user, food, "1", d)
	}
	list, err := suite.svc.ListExpensesInRange(suite.ctx, suite.user.ID, "2024-01-30", "2024-02-02")
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), list, 4)

	_, err = suite.svc.ListExpensesInRange(suite.ctx, suite.user.ID, "2024-02-02", "2024-01-30")
	suite.assertField(err, "end")
	_, err = suite.svc.ListExpensesInRange(suite.ctx, suite.user.ID, "2024-02", "2024-03-01")
	suite.assertField(err, "start")
}

func (suite *ServiceTestSuite) TestUpdateExpense() {
	food := suite.category(suite.user, "Food")
	rent := suite.category(suite.user, "Rent")
	res := suite.expense(suite.user, food, "10", "2024-03-31")

	e, err := suite.svc.UpdateExpense(suite.ctx, suite.user.ID, res.Expense.ID, ExpenseInput{
		Category: str(rent.ID.String()), Date: str("2024-04-01"), Notes: str("moved"),
	})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2024-04", e.Month)
	assert.Equal(suite.T(), rent.ID, *e.CategoryID)
	assert.Equal(suite.T(), money.Units(10), e.Amount)

	e, err = suite.svc.UpdateExpense(suite.ctx, suite.user.ID, res.Expense.ID, ExpenseInput{Category: str("")})
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), e.CategoryID)

	_, err = suite.svc.UpdateExpense(suite.ctx, suite.user.ID, res.Expense.ID, ExpenseInput{Amount: dec("-3")})
	suite.assertField(err, "amount")

	_, err = suite.svc.UpdateExpense(suite.ctx, suite.other.ID, res.Expense.ID, ExpenseInput{Notes: str("x")})
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *ServiceTestSuite) TestDeleteScopedToOwner() {
	food := suite.category(suite.user, "Food")
	res := suite.expense(suite.user, food, "10", "2024-03-01")
	assert.ErrorIs(suite.T(), suite.svc.DeleteExpense(suite.ctx, suite.other.ID, res.Expense.ID), ErrNotFound)
	assert.NoError(suite.T(), suite.svc.DeleteExpense(suite.ctx, suite.user.ID, res.Expense.ID))

	b, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-03", Limit: dec("1")})
	require.NoError(suite.T(), err)
	assert.ErrorIs(suite.T(), suite.svc.DeleteBudget(suite.ctx, suite.other.ID, b.ID), ErrNotFound)
	assert.NoError(suite.T(), suite.svc.DeleteBudget(suite.ctx, suite.user.ID, b.ID))
	assert.ErrorIs(suite.T(), suite.svc.DeleteBudget(suite.ctx, suite.user.ID, b.ID), ErrNotFound)
}

func (suite *ServiceTestSuite) TestListBudgetsTotalsOnlyThatMonth() {
	food := suite.category(suite.user, "Food")
	rent := suite.category(suite.user, "Rent")
	for _, c := range []*models.Category{food, rent} {
		_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: c.ID.String(), Month: "2024-03", Limit: dec("100")})
		require.NoError(suite.T(), err)
	}
	suite.expense(suite.user, food, "10.10", "2024-03-01")
	suite.expense(suite.user, food, "20.20", "2024-03-31")
	suite.expense(suite.user, food, "500", "2024-04-01")
	suite.expense(suite.user, food, "500", "2024-02-29")

	list, err := suite.svc.ListBudgets(suite.ctx, suite.user.ID, "2024-03")
	require.NoError(suite.T(), err)
	require.Len(suite.T(), list, 2)
	spent := map[uuid.UUID]money.Amount{}
	for _, b := range list {
		require.NotNil(suite.T(), b.Category)
		spent[b.CategoryID] = b.TotalSpent
	}
	assert.Equal(suite.T(), money.Cents(3030), spent[food.ID])
	assert.Equal(suite.T(), money.Amount(0), spent[rent.ID])
}

func (suite *ServiceTestSuite) TestMonthlySummary() {
	food := suite.category(suite.user, "Food")
	rent := suite.category(suite.user, "Rent")
	_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-03", Limit: dec("100")})
	require.NoError(suite.T(), err)
	_, err = suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: rent.ID.String(), Month: "2024-03", Limit: dec("200")})
	require.NoError(suite.T(), err)
	suite.expense(suite.user, food, "150", "2024-03-02")
	suite.expense(suite.user, rent, "50", "2024-03-02")

	sum, err := suite.svc.Summary(suite.ctx, suite.user.ID, "2024-03")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "2024-03", sum.Month)
	assert.Equal(suite.T(), money.Units(300), sum.Budget)
	assert.Equal(suite.T(), money.Units(200), sum.Spent)
	assert.Equal(suite.T(), money.Units(100), sum.Remaining)
	assert.Equal(suite.T(), int64(67), sum.PercentOfBudget)
	assert.Equal(suite.T(), budget.WithinBudget, sum.Status)
	require.Len(suite.T(), sum.Categories, 2)
	for _, row := range sum.Categories {
		if row.CategoryID == food.ID {
			assert.Equal(suite.T(), budget.OverBudget, row.Status)
			assert.Equal(suite.T(), "Food", row.Name)
		}
	}
}

func (suite *ServiceTestSuite) TestTrendCrossesYearBoundary() {
	food := suite.category(suite.user, "Food")
	for _, month := range []string{"2023-12", "2024-01", "2024-02"} {
		_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: month, Limit: dec("50")})
		require.NoError(suite.T(), err)
	}
	suite.expense(suite.user, food, "60", "2023-12-31")
	suite.expense(suite.user, food, "10", "2024-02-29")

	trend, err := suite.svc.Trend(suite.ctx, suite.user.ID, "2024-02", 3)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), trend, 3)
	assert.Equal(suite.T(), "2023-12", trend[0].Month)
	assert.Equal(suite.T(), "2024-01", trend[1].Month)
	assert.Equal(suite.T(), "2024-02", trend[2].Month)
	assert.Equal(suite.T(), budget.OverBudget, trend[0].Status)
	assert.Equal(suite.T(), money.Amount(0), trend[1].Spent)
	assert.Equal(suite.T(), money.Units(10), trend[2].Spent)

	_, err = suite.svc.Trend(suite.ctx, suite.user.ID, "2024-02", 0)
	suite.assertField(err, "months")
}

func (suite *ServiceTestSuite) TestAmountsAboveBoundRejected() {
	food := suite.category(suite.user, "Food")
	_, err := suite.svc.UpsertBudget(suite.ctx, suite.user.ID, BudgetInput{CategoryID: food.ID.String(), Month: "2024-03", Limit: dec("1000000000000.01")})
	suite.assertField(err, "limit")

	cat := food.ID.String()
	_, err = suite.svc.CreateExpense(suite.ctx, suite.user.ID, ExpenseInput{Category: &cat, Amount: dec("92233720368547758"), Date: str("2024-03-01")})
	suite.assertField(err, "amount")
}

func (suite *ServiceTestSuite) TestOffsetDateUsesUTCMonth() {
	food := suite.category(suite.user, "Food")
	res := suite.expense(suite.user, food, "5", "2024-03-31T23:30:00-05:00")
	assert.Equal(suite.T(), "2024-04", res.Expense.Month)
	assert.Equal(suite.T(), time.Date(2024, 4, 1, 4, 30, 0, 0, time.UTC), res.Expense.Date)

	april, err := suite.svc.ListExpensesForMonth(suite.ctx, suite.user.ID, "2024-04", "")
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), april, 1)
}
