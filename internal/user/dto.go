package user

import (
	"github.com/frahmantamala/expense-tracker/internal/core/common/money"
	"github.com/frahmantamala/expense-tracker/internal/core/common/patch"
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
)

// UpdateUserDTO is the PUT /users/me body. Only keys present in the request are applied;
// none of the fields accept null.
type UpdateUserDTO struct {
	Name     patch.Field[string]  `json:"name"`
	Email    patch.Field[string]  `json:"email"`
	Budget   patch.Field[float64] `json:"budget"`
	Password patch.Field[string]  `json:"password"`
}

func (d *UpdateUserDTO) Normalize() {
	if d.Email.Present() {
		d.Email.Value = validation.NormalizeEmail(d.Email.Value)
	}
}

func (d UpdateUserDTO) Validate() error {
	for _, f := range []struct {
		name string
		null bool
	}{
		{"name", d.Name.Null},
		{"email", d.Email.Null},
		{"budget", d.Budget.Null},
		{"password", d.Password.Null},
	} {
		if f.null {
			return validation.NullNotAllowed(f.name)
		}
	}

	v := validation.NewValidator()
	if d.Name.Present() {
		v.Name(d.Name.Value)
	}
	if d.Email.Present() {
		v.Email(d.Email.Value)
	}
	if d.Budget.Present() {
		v.Budget(d.Budget.Value)
	}
	if d.Password.Present() {
		v.Password(d.Password.Value)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// Apply writes the present fields onto u. passwordHash is used only when a password was sent.
func (d UpdateUserDTO) Apply(u *User, passwordHash string) {
	if d.Name.Present() {
		u.Name = d.Name.Value
	}
	if d.Email.Present() {
		u.Email = d.Email.Value
	}
	if d.Budget.Present() {
		u.Budget = money.Round(d.Budget.Value)
	}
	if d.Password.Present() {
		u.PasswordHash = passwordHash
	}
}
