package auth

import (
	"github.com/frahmantamala/expense-tracker/internal/core/common/validation"
)

// LoginDTO mirrors the OAuth2 password form: username carries the email.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password", d.Password).Required()
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type RegisterDTO struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Budget   float64 `json:"budget"`
}

// Normalize trims the email and folds it to lower case.
func (d *RegisterDTO) Normalize() {
	d.Email = validation.NormalizeEmail(d.Email)
}

func (d RegisterDTO) Validate() error {
	err := validation.NewValidator().
		Name(d.Name).
		Email(d.Email).
		Password(d.Password).
		Budget(d.Budget).
		Validate()
	if err != nil {
		return err
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
