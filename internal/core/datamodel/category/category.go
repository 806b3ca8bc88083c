package category

// CategoryTotal is one row of the per-category GROUP BY over expenses.
type CategoryTotal struct {
	Name      string  `db:"name"`
	Total     float64 `db:"total"`
	PaidTotal float64 `db:"paid_total"`
	Count     int64   `db:"count"`
}
