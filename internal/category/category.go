package category

import (
	"github.com/frahmantamala/expense-tracker/internal/core/common/money"
	categoryDatamodel "github.com/frahmantamala/expense-tracker/internal/core/datamodel/category"
)

// Uncategorized groups expenses whose category is null or empty.
const Uncategorized = "uncategorized"

type Category struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
	Paid  float64 `json:"paid"`
	Count int64   `json:"count"`
}

func FromDataModel(row *categoryDatamodel.CategoryTotal) Category {
	return Category{
		Name:  row.Name,
		Total: money.Round(row.Total),
		Paid:  money.Round(row.PaidTotal),
		Count: row.Count,
	}
}

func FromDataModelSlice(rows []*categoryDatamodel.CategoryTotal) []Category {
	out := make([]Category, len(rows))
	for i, row := range rows {
		out[i] = FromDataModel(row)
	}
	return out
}
