package models

// Institution is one selectable entry of the institution tree.
type Institution struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Depth int    `json:"depth"` // nesting level, 0 = top level
}

// Row is one line of the generated institution list.
type Row struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Record returns the row as CSV fields.
func (r Row) Record() []string {
	return []string{r.ID, r.Label}
}
