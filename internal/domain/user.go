package domain

// UserRecord is the user shape accepted by the field extractor. Only Name and
// Email are projected; everything else stays on the record.
type UserRecord struct {
	ID         string
	Name       string
	Email      string
	Attributes map[string]any
}

// UserView is the projection of a UserRecord returned to callers.
type UserView struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email" yaml:"email"`
}
