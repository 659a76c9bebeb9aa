package auth

type Credentials struct {
	Email       string `json:"email" validate:"required,email,min=3"`
	Password    string `json:"password" validate:"required,min=6"`
	CallbackURL string `json:"callbackUrl"`
}

type SignUp struct {
	Name            string `json:"name" validate:"omitempty,min=3"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	CallbackURL     string `json:"callbackUrl"`
}
