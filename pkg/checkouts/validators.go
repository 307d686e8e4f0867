package checkouts

type CreatePayload struct {
	PatronID int   `json:"patron_id" form:"patron_id" validate:"required,min=1"`
	ItemIDs  []int `json:"item_ids" form:"item_ids" validate:"required,min=1,dive,min=1"`
}

type CheckinPayload struct {
	Barcode string `json:"barcode" form:"barcode" mod:"trim,ucase" validate:"required"`
}
