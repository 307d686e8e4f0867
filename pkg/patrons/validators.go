package patrons

type SignupPayload struct {
	Name       string `json:"name" form:"name" mod:"trim" validate:"required,max=200"`
	Email      string `json:"email" form:"email" mod:"trim,lcase" validate:"required,email"`
	PIN        string `json:"pin" form:"pin" validate:"required,pin"`
	ConfirmPIN string `json:"confirm_pin" form:"confirm_pin" validate:"required"`
}

type ListPatronsQuery struct {
	Query  string `query:"q" mod:"trim"`
	Filter string `query:"filter" validate:"omitempty,oneof=active expired suspended"`
	Limit  int    `query:"limit" default:"50" validate:"min=1,max=200"`
	Offset int    `query:"offset" validate:"min=0"`
}
