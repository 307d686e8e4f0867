package search

// Query is the query string for both typeahead endpoints.
type Query struct {
	Query string `query:"q" mod:"trim" validate:"max=100"`
}

type PatronResult struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	CardNumber string  `json:"card_number"`
	CheckedOut int     `json:"checked_out"`
	Fines      float64 `json:"fines"`
}

type ItemResult struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Barcode   string `json:"barcode"`
	MediaType string `json:"media_type"`
}
