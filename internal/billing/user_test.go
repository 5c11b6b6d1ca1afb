package billing

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanshika/tallyline/internal/domain"
)

func TestProcessUser(t *testing.T) {
	user := domain.UserRecord{
		ID:         "USR-1",
		Name:       "Ann",
		Email:      "ann@x.com",
		Attributes: map[string]any{"plan": "pro"},
	}

	got := ProcessUser(user)
	want := domain.UserView{Name: "Ann", Email: "ann@x.com"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ProcessUser mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, got, ProcessUser(user))
	assert.Equal(t, map[string]any{"plan": "pro"}, user.Attributes)
}

func TestProcessUser_KeepsSuppliedEmail(t *testing.T) {
	for _, email := range []string{"a@b.io", "first.last+tag@example.com"} {
		view := ProcessUser(domain.UserRecord{Name: "x", Email: email})
		assert.Equal(t, email, view.Email)
	}
}

func TestProcessUser_MissingEmailIsEmpty(t *testing.T) {
	view := ProcessUser(domain.UserRecord{Name: "Bob"})
	assert.Equal(t, domain.UserView{Name: "Bob"}, view)
}

func TestRequireEmail(t *testing.T) {
	_, err := RequireEmail(domain.UserRecord{Name: "Bob", Email: "  "})
	require.ErrorIs(t, err, ErrMissingEmail)

	view, err := RequireEmail(domain.UserRecord{Name: "Ann", Email: "ann@x.com"})
	require.NoError(t, err)
	assert.Equal(t, "ann@x.com", view.Email)
}
