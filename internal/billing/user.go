package billing

import (
	"errors"
	"strings"

	"github.com/vanshika/tallyline/internal/domain"
)

// ErrMissingEmail is returned by RequireEmail when the record has no email.
var ErrMissingEmail = errors.New("user email is required")

// ProcessUser projects name and email into a new view. A record without an
// email yields a view with an empty Email.
func ProcessUser(user domain.UserRecord) domain.UserView {
	return domain.UserView{
		Name:  user.Name,
		Email: user.Email,
	}
}

// RequireEmail is the strict form of ProcessUser.
func RequireEmail(user domain.UserRecord) (domain.UserView, error) {
	if strings.TrimSpace(user.Email) == "" {
		return domain.UserView{}, ErrMissingEmail
	}
	return ProcessUser(user), nil
}
