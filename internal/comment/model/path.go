package model

// PathItem is one hop on the way from a root comment down to a reply.
type PathItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}
