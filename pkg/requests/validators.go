package requests

type SubmitPayload struct {
	Title     string `json:"title" form:"title" mod:"trim" validate:"required,max=300"`
	Author    string `json:"author" form:"author" mod:"trim" validate:"max=200"`
	MediaType string `json:"media_type" form:"media_type" default:"book" validate:"oneof=book audiobook dvd cd magazine other"`
	Reason    string `json:"reason" form:"reason" mod:"trim"`
	// Left out means notify.
	NotifyWhenAvailable *bool `json:"notify_when_available" form:"notify_when_available"`
}

type ReviewQuery struct {
	Status string `query:"status" default:"pending" validate:"oneof=pending approved rejected all"`
}
