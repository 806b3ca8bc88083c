package expense

import (
	"fmt"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/core/common/money"
	expenseDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/expense"
)

type Expense struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Amount      float64   `json:"amount"`
	Paid        bool      `json:"paid"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	StatusOnTrack    = "On track"
	StatusOverBudget = "Over budget"
)

// OwnedBy is the ownership check every read and mutation goes through.
func (e *Expense) OwnedBy(userID int64) bool {
	return e.UserID == userID
}

func (e *Expense) TogglePaid() {
	e.Paid = !e.Paid
}

// NewExpense builds an expense owned by userID. Ownership never comes from the request body.
func NewExpense(userID int64, dto CreateExpenseDTO) *Expense {
	e := &Expense{
		UserID:      userID,
		Description: dto.Description,
		Category:    dto.Category,
	}
	if dto.Amount != nil {
		e.Amount = money.Round(*dto.Amount)
	}
	if dto.Paid != nil {
		e.Paid = *dto.Paid
	}
	return e
}

func ToDataModel(e *Expense) *expenseDatamodel.Expense {
	return &expenseDatamodel.Expense{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      e.Amount,
		Paid:        e.Paid,
		Description: e.Description,
		Category:    e.Category,
		CreatedAt:   e.CreatedAt,
	}
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	return &Expense{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      e.Amount,
		Paid:        e.Paid,
		Description: e.Description,
		Category:    e.Category,
		CreatedAt:   e.CreatedAt,
	}
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}

// Summary is the caller's spending against their budget.
type Summary struct {
	User            string  `json:"user"`
	Budget          float64 `json:"budget"`
	TotalExpenses   float64 `json:"total_expenses"`
	TotalPaid       float64 `json:"total_paid"`
	RemainingBudget float64 `json:"remaining_budget"`
	PaidCount       int64   `json:"paid_count"`
	TotalCount      int64   `json:"total_count"`
	PaidRatio       string  `json:"paid_ratio"`
	Status          string  `json:"status"`
}

// NewSummary derives the remaining budget and status from one aggregate row. Only a
// strictly negative remainder is over budget.
func NewSummary(row *expenseDatamodel.SummaryRow) *Summary {
	totalPaid := money.Round(row.TotalPaid)
	budget := money.Round(row.Budget)
	remaining := money.Round(budget - totalPaid)

	status := StatusOnTrack
	if remaining < 0 {
		status = StatusOverBudget
	}

	return &Summary{
		User:            row.UserName,
		Budget:          budget,
		TotalExpenses:   money.Round(row.TotalExpenses),
		TotalPaid:       totalPaid,
		RemainingBudget: remaining,
		PaidCount:       row.PaidCount,
		TotalCount:      row.TotalCount,
		PaidRatio:       fmt.Sprintf("%d / %d", row.PaidCount, row.TotalCount),
		Status:          status,
	}
}

func (s *Summary) OverBudget() bool {
	return s.Status == StatusOverBudget
}
