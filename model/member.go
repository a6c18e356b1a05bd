package model

// Member carries identity and display name only. A member's current loans
// and reservations are derived by querying books, never stored here.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
