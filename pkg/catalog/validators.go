package catalog

type SearchQuery struct {
	Query     string `query:"q" mod:"trim"`
	SearchBy  string `query:"search_by" default:"any" validate:"oneof=any title author isbn publisher"`
	MediaType string `query:"type" validate:"omitempty,oneof=book audiobook dvd cd magazine"`
	Genre     string `query:"genre" mod:"trim"`
}

type ListQuery struct {
	Query     string `query:"q" mod:"trim"`
	MediaType string `query:"type" validate:"omitempty,oneof=book audiobook dvd cd magazine"`
	Offset    int    `query:"offset" validate:"min=0"`
}

type CreatePayload struct {
	Title       string `json:"title" form:"title" mod:"trim" validate:"required,max=300"`
	Author      string `json:"author" form:"author" mod:"trim" validate:"max=200"`
	MediaType   string `json:"media_type" form:"media_type" validate:"required,oneof=book audiobook dvd cd magazine"`
	ISBN        string `json:"isbn" form:"isbn" mod:"trim" validate:"max=20"`
	Description string `json:"description" form:"description" mod:"trim"`
	Genre       string `json:"genre" form:"genre" mod:"trim" validate:"max=100"`
	Publisher   string `json:"publisher" form:"publisher" mod:"trim" validate:"max=200"`
	Location    string `json:"location" form:"location" mod:"trim" validate:"max=100"`
	Pages       *int   `json:"pages" form:"pages" validate:"omitempty,min=1"`
}
