package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"kollab-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestGetUsers_ResolvesKnownIDsInOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	var ids []string
	for i := 0; i < 35; i++ {
		id := fmt.Sprintf("u-%02d", i)
		ids = append(ids, id)
		require.NoError(t, env.store.UpsertProfile(ctx, &models.UserProfile{ID: id, DisplayName: "User " + id}))
	}
	ids = append(ids, "ghost", ids[0])

	w := env.do(http.MethodGet, "/api/users?ids="+strings.Join(ids, ","), "u-00", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[struct {
		Users []struct {
			ID string `json:"id"`
		} `json:"users"`
		Count   int  `json:"count"`
		Partial bool `json:"partial"`
	}](t, w)
	require.Equal(t, 35, resp.Count)
	require.False(t, resp.Partial)
	require.Equal(t, "u-00", resp.Users[0].ID)
	require.Equal(t, "u-34", resp.Users[34].ID)
}

func TestGetUsers_RequiresIDs(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/users", "u-1", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetMe_UnknownProfile(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/users/me", "never-logged-in", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodGet, "/api/workflows", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
