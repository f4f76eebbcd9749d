package togetapi

// Group mirrors GET /api/{group}/.
type Group struct {
	Label string    `json:"label"`
	Lists []ListRef `json:"lists"`
}

// ListRef is one entry of a group.
type ListRef struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// List mirrors GET /api/{group}/lists/{list}/.
type List struct {
	Label string `json:"label"`
	Items []Item `json:"items"`
}

// Item is one shopping entry.
type Item struct {
	Item      string `json:"item"`
	Amount    int    `json:"amount"`
	Collected bool   `json:"collected"`
}

// Find returns the index of the first item named name, or -1.
func (l *List) Find(name string) int {
	if l == nil {
		return -1
	}
	for i, it := range l.Items {
		if it.Item == name {
			return i
		}
	}
	return -1
}
