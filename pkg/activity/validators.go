package activity

type ListActivityQuery struct {
	Limit  int    `query:"limit" default:"50" validate:"min=1,max=200"`
	Offset int    `query:"offset" validate:"min=0"`
	Action string `query:"action" validate:"omitempty,oneof=checkout checkin hold_placed hold_cancelled request_submitted request_approved request_rejected patron_created renewal fine_paid"`
}
