package auth

// LoginPayload picks the credential pair by user_type.
type LoginPayload struct {
	UserType   Role   `json:"user_type" form:"user_type" validate:"required,oneof=patron librarian"`
	CardNumber string `json:"card_number" form:"card_number" mod:"trim,ucase" validate:"required_if=UserType patron"`
	PIN        string `json:"pin" form:"pin" validate:"required_if=UserType patron"`
	Username   string `json:"username" form:"username" mod:"trim" validate:"required_if=UserType librarian"`
	Password   string `json:"password" form:"password" validate:"required_if=UserType librarian"`
}
