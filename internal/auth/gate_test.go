package auth

import (
	"testing"

	"github.com/isdelr/bookfinder-be/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize_TruthTable(t *testing.T) {
	t.Parallel()

	recommender := &Claims{SubjectID: "u1", Role: models.RoleRecommender}
	reader := &Claims{SubjectID: "u2", Role: models.RoleReader}

	cases := []struct {
		name     string
		claims   *Claims
		required models.Role
		want     error
	}{
		{"no claims, any", nil, models.RoleAny, ErrUnauthenticated},
		{"no claims, recommender", nil, models.RoleRecommender, ErrUnauthenticated},
		{"no claims, reader", nil, models.RoleReader, ErrUnauthenticated},
		{"recommender, any", recommender, models.RoleAny, nil},
		{"recommender, recommender", recommender, models.RoleRecommender, nil},
		{"recommender, reader", recommender, models.RoleReader, ErrForbiddenRole},
		{"reader, any", reader, models.RoleAny, nil},
		{"reader, reader", reader, models.RoleReader, nil},
		{"reader, recommender", reader, models.RoleRecommender, ErrForbiddenRole},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(tc.claims, tc.required)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
