package utils_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/example/tribuna/internal/utils"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  utils.Pagination
	}{
		{"defaults", "", utils.Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"explicit", "?page=3&limit=10", utils.Pagination{Page: 3, Limit: 10, Offset: 20}},
		{"negative page", "?page=-2", utils.Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"zero limit", "?limit=0", utils.Pagination{Page: 1, Limit: 20, Offset: 0}},
		{"limit clamped", "?limit=5000", utils.Pagination{Page: 1, Limit: 100, Offset: 0}},
		{"garbage", "?page=abc&limit=xyz", utils.Pagination{Page: 1, Limit: 20, Offset: 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := fiber.New()
			var got utils.Pagination
			app.Get("/", func(c *fiber.Ctx) error {
				got = utils.ParsePagination(c)
				return c.SendStatus(fiber.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest("GET", "/"+tc.query, nil), -1)
			require.NoError(t, err)
			resp.Body.Close()
			require.Equal(t, tc.want, got)
		})
	}
}
