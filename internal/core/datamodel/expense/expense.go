package expense

import "time"

type Expense struct {
	ID          int64     `gorm:"primaryKey"`
	UserID      int64     `gorm:"column:user_id;not null;index"`
	Amount      float64   `gorm:"column:amount;type:decimal(12,2);not null"`
	Paid        bool      `gorm:"column:paid;not null;default:false"`
	Description *string   `gorm:"column:description"`
	Category    *string   `gorm:"column:category"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Expense) TableName() string {
	return "expenses"
}

// SummaryRow is one users LEFT JOIN expenses aggregate.
type SummaryRow struct {
	UserName      string  `db:"user_name"`
	Budget        float64 `db:"budget"`
	TotalExpenses float64 `db:"total_expenses"`
	TotalPaid     float64 `db:"total_paid"`
	TotalCount    int64   `db:"total_count"`
	PaidCount     int64   `db:"paid_count"`
}
