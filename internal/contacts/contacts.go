// Package contacts provides the built-in contact directory used to pick who a
// capture is about.
package contacts

import (
	"strings"

	"golang.org/x/text/cases"
)

// Contact is one directory entry.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Directory is an ordered, read-only contact list.
type Directory struct {
	entries []Contact
}

var sample = []Contact{
	{ID: "1", Name: "Alex Johnson", Phone: "+15551230001"},
	{ID: "2", Name: "Priya Patel", Phone: "+15551230002"},
	{ID: "3", Name: "Marcus Lee", Phone: "+15551230003"},
	{ID: "4", Name: "Nina Gomez", Phone: "+15551230004"},
	{ID: "5", Name: "Samuel Wright", Phone: "+15551230005"},
	{ID: "6", Name: "Amina Hassan", Phone: "+15551230006"},
	{ID: "7", Name: "Jordan Kim", Phone: "+15551230007"},
	{ID: "8", Name: "Lily Chen", Phone: "+15551230008"},
}

// Default returns the built-in sample directory.
func Default() *Directory {
	return New(sample)
}

// New builds a directory over a copy of entries.
func New(entries []Contact) *Directory {
	copied := make([]Contact, len(entries))
	copy(copied, entries)
	return &Directory{entries: copied}
}

// All returns every contact in directory order.
func (d *Directory) All() []Contact {
	out := make([]Contact, len(d.entries))
	copy(out, d.entries)
	return out
}

// Search returns contacts whose name or phone contains query, ignoring case.
// A blank query matches everything.
func (d *Directory) Search(query string) []Contact {
	query = strings.TrimSpace(query)
	if query == "" {
		return d.All()
	}
	// Casers carry state, so each search folds with its own.
	folder := cases.Fold()
	needle := folder.String(query)
	var matches []Contact
	for _, c := range d.entries {
		if strings.Contains(folder.String(c.Name), needle) || strings.Contains(folder.String(c.Phone), needle) {
			matches = append(matches, c)
		}
	}
	return matches
}

// ByID looks up a contact by identifier.
func (d *Directory) ByID(id string) (Contact, bool) {
	id = strings.TrimSpace(id)
	for _, c := range d.entries {
		if c.ID == id {
			return c, true
		}
	}
	return Contact{}, false
}
