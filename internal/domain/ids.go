package domain

// UserID is an internal identifier for a user account. It doubles as the
// authenticated subject carried in token claims.
type UserID string

// RoleID is an internal identifier for a role record.
type RoleID string

// ListID is an internal identifier for a shopping list.
type ListID string

// ItemID is an internal identifier for a shopping-list item.
type ItemID string
