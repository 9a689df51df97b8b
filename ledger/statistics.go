package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"expense-ledger-go/models"
)

func (s *Service) userExpenses(ctx context.Context, userID uint, from, to *time.Time, toExclusive bool) ([]models.Expense, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if from != nil {
		q = q.Where("expense_date >= ?", from.UTC())
	}
	if to != nil {
		if toExclusive {
			q = q.Where("expense_date < ?", to.UTC())
		} else {
			q = q.Where("expense_date <= ?", to.UTC())
		}
	}

	var expenses []models.Expense
	if err := q.Order("expense_date ASC, id ASC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// GetStatistics folds a user's expenses, optionally bounded by date, into
// totals per category and payment method. No expenses yields zero totals and
// empty maps.
func (s *Service) GetStatistics(ctx context.Context, userID uint, from, to *time.Time) (*models.ExpenseStatistics, error) {
	if from != nil && to != nil && from.After(*to) {
		return nil, invalid("start date is after end date")
	}

	expenses, err := s.userExpenses(ctx, userID, from, to, false)
	if err != nil {
		return nil, err
	}

	stats := &models.ExpenseStatistics{
		TotalAmount:     decimal.Zero,
		ByCategory:      map[string]decimal.Decimal{},
		ByPaymentMethod: map[string]decimal.Decimal{},
		AverageExpense:  decimal.Zero,
		DateRange:       map[string]time.Time{},
	}
	if len(expenses) == 0 {
		return stats, nil
	}

	for _, e := range expenses {
		stats.TotalAmount = stats.TotalAmount.Add(e.Amount)
		stats.ByCategory[string(e.Category)] = stats.ByCategory[string(e.Category)].Add(e.Amount)
		stats.ByPaymentMethod[string(e.PaymentMethod)] = stats.ByPaymentMethod[string(e.PaymentMethod)].Add(e.Amount)
	}
	stats.TotalExpenses = len(expenses)
	stats.AverageExpense = stats.TotalAmount.DivRound(decimal.NewFromInt(int64(len(expenses))), 2)
	stats.DateRange["start"] = expenses[0].ExpenseDate
	stats.DateRange["end"] = expenses[len(expenses)-1].ExpenseDate

	return stats, nil
}

// GetMonthlySummary totals one calendar month (UTC) for a user. The top
// category and merchant are those with the largest summed amount; on a tie
// the one that reached the maximum first, walking expenses by date, wins.
func (s *Service) GetMonthlySummary(ctx context.Context, userID uint, year, month int) (*models.ExpenseSummary, error) {
	if month < 1 || month > 12 {
		return nil, invalid("month must be between 1 and 12")
	}
	if year < 1900 || year > 9999 {
		return nil, invalid("year %d out of range", year)
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	expenses, err := s.userExpenses(ctx, userID, &start, &end, true)
	if err != nil {
		return nil, err
	}

	summary := &models.ExpenseSummary{
		Period:       fmt.Sprintf("%04d-%02d", year, month),
		TotalAmount:  decimal.Zero,
		ExpenseCount: len(expenses),
	}

	categories := newLeader()
	merchants := newLeader()
	for _, e := range expenses {
		summary.TotalAmount = summary.TotalAmount.Add(e.Amount)
		categories.add(string(e.Category), e.Amount)
		if e.MerchantName != "" {
			merchants.add(e.MerchantName, e.Amount)
		}
	}
	summary.TopCategory = categories.top()
	summary.TopMerchant = merchants.top()

	return summary, nil
}

// leader tracks running sums per key and the first key to hold the highest
// sum. A later key only takes the lead by exceeding it.
type leader struct {
	sums map[string]decimal.Decimal
	key  string
	max  decimal.Decimal
	seen bool
}

func newLeader() *leader {
	return &leader{sums: map[string]decimal.Decimal{}}
}

func (l *leader) add(key string, amount decimal.Decimal) {
	sum := l.sums[key].Add(amount)
	l.sums[key] = sum
	if !l.seen || sum.GreaterThan(l.max) {
		l.key, l.max, l.seen = key, sum, true
	}
}

func (l *leader) top() *string {
	if !l.seen {
		return nil
	}
	key := l.key
	return &key
}
