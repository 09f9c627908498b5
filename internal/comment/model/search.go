package model

type SearchItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Snippet string `json:"snippet"`
	Date    string `json:"date"`
	Depth   int    `json:"depth"`
}

type SearchPage struct {
	Items []SearchItem `json:"items"`
	Total int          `json:"total"`
}
