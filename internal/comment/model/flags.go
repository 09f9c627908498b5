package model

// Flags maps node ids to true; absence means false.
type Flags map[string]bool

func (f Flags) Has(id string) bool {
	return f[id]
}
