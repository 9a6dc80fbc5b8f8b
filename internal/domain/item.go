package domain

import "time"

// Item is the domain representation of a shopping-list item.
// An item belongs to exactly one list and is never shared independently.
type Item struct {
	ID     ItemID
	ListID ListID

	Name string
	Done bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
