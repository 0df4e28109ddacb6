package handlers

import (
	"net/http"
	"testing"
	"time"

	"kollab-api/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestLogin_UpsertsProfileAndIssuesToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/api/login", "", gin.H{
		"idToken": env.idToken(auth.Identity{
			UID:         "firebase-uid-1",
			DisplayName: "Ada",
			Email:       "ada@example.com",
			PhotoURL:    "https://img/ada.png",
		}),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[struct {
		Token string `json:"token"`
		User  struct {
			ID        string `json:"id"`
			AvatarURL string `json:"avatarUrl"`
		} `json:"user"`
	}](t, w)
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "firebase-uid-1", resp.User.ID)
	require.Equal(t, "https://img/ada.png", resp.User.AvatarURL)

	claims, err := env.tokens.Validate(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "firebase-uid-1", claims.UserID)
	require.Equal(t, "Ada", claims.DisplayName)

	me := env.do(http.MethodGet, "/api/users/me", "firebase-uid-1", nil)
	require.Equal(t, http.StatusOK, me.Code)
}

func TestLogin_RequiresIDToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/api/login", "", gin.H{"uid": "victim", "displayName": "nobody"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_CannotImpersonateAnotherUser(t *testing.T) {
	env := newTestEnv(t)
	wf := env.createWorkflow("victim", "Blank Workflow")

	forger := auth.NewProviderVerifier("guessed-secret", "https://id.kollab.test")
	forged, err := forger.SignIdentity(auth.Identity{UID: "victim"}, time.Hour)
	require.NoError(t, err)
	w := env.do(http.MethodPost, "/api/login", "", gin.H{"idToken": forged})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/api/login", "", gin.H{
		"uid":     "victim",
		"idToken": env.idToken(auth.Identity{UID: "attacker"}),
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodGet, "/api/workflows/"+wf.Workflow.ID, "attacker", nil)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestLogin_DisabledWithoutProvider(t *testing.T) {
	h := New(Options{})
	r := gin.New()
	r.POST("/api/login", h.Login)
	env := &testEnv{t: t, router: r}

	w := env.do(http.MethodPost, "/api/login", "", gin.H{"idToken": "anything"})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}
