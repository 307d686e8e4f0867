package librarians

type SignupPayload struct {
	Username        string `json:"username" form:"username" mod:"trim" validate:"required,min=3,max=100"`
	Email           string `json:"email" form:"email" mod:"trim,lcase" validate:"required,email"`
	Password        string `json:"password" form:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password" validate:"required"`
}
