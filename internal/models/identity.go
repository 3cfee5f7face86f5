package models

// Identity is a verified caller identity produced by the identity collaborator.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// UserHoldingDocument is the per-user mirror of a holding written to the
// document store.
type UserHoldingDocument struct {
	UserID    string  `json:"user_id"`
	Email     string  `json:"email,omitempty"`
	Holding   Holding `json:"holding"`
	UpdatedAt string  `json:"updated_at"`
}
