package expense

import (
	"net/url"
	"strconv"

	errors "github.com/frahmantamala/expense-tracker/internal"
	"github.com/frahmantamala/expense-tracker/internal/core/common/money"
	"github.com/frahmantamala/expense-tracker/internal/core/common/patch"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
)

const MaxListLimit = 100

// CreateExpenseDTO is the POST /expenses/ body. A user_id key, if sent, is ignored.
type CreateExpenseDTO struct {
	Amount      *float64 `json:"amount"`
	Paid        *bool    `json:"paid"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
}

func (dto CreateExpenseDTO) Validate() error {
	if err := validation.ValidateExpenseAmount(dto.Amount); err != nil {
		return err
	}
	return nil
}

// UpdateExpenseDTO is the PUT /expenses/{id} body. description and category may be
// cleared with null; amount and paid may not.
type UpdateExpenseDTO struct {
	Amount      patch.Field[float64] `json:"amount"`
	Paid        patch.Field[bool]    `json:"paid"`
	Description patch.Field[string]  `json:"description"`
	Category    patch.Field[string]  `json:"category"`
}

func (dto UpdateExpenseDTO) Validate() error {
	if dto.Amount.Null {
		return validation.NullNotAllowed("amount")
	}
	if dto.Paid.Null {
		return validation.NullNotAllowed("paid")
	}
	if dto.Amount.Present() {
		v := validation.NewValidator()
		v.Field("amount", dto.Amount.Value).Finite(errors.ErrCodeInvalidAmount)
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (dto UpdateExpenseDTO) Apply(e *Expense) {
	if dto.Amount.Present() {
		e.Amount = money.Round(dto.Amount.Value)
	}
	if dto.Paid.Present() {
		e.Paid = dto.Paid.Value
	}
	if dto.Description.Set {
		e.Description = dto.Description.Ptr()
	}
	if dto.Category.Set {
		e.Category = dto.Category.Ptr()
	}
}

// ListQuery pages GET /expenses/user. A zero Limit returns every row.
type ListQuery struct {
	Limit  int
	Offset int
}

func ParseListQuery(values url.Values) (ListQuery, error) {
	var q ListQuery
	v := validation.NewValidator()

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		v.Field("limit", raw).Custom(func(interface{}) *errors.AppError {
			if err != nil || limit < 1 || limit > MaxListLimit {
				return errors.NewValidationFieldError("limit", "limit must be an integer between 1 and 100", errors.ErrCodeValidationFailed)
			}
			return nil
		})
		q.Limit = limit
	}

	if raw := values.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		v.Field("offset", raw).Custom(func(interface{}) *errors.AppError {
			if err != nil || offset < 0 {
				return errors.NewValidationFieldError("offset", "offset must be a non-negative integer", errors.ErrCodeValidationFailed)
			}
			return nil
		})
		q.Offset = offset
	}

	if err := v.Validate(); err != nil {
		return ListQuery{}, err
	}
	return q, nil
}
