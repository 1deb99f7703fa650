package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devlink/devlink"
	"github.com/devlink/devlink/client"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestClientRegisterStoresToken(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/users", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload devlink.RegisterPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Jane Doe", payload.Name)
		assert.Equal(t, "jane@example.com", payload.Email)

		json.NewEncoder(w).Encode(devlink.TokenResponse{Token: "fresh-token"})
	})

	store := client.NewMemorySessionStore()
	c, err := client.New(server.URL, client.WithSessionStore(store))
	require.NoError(t, err)

	require.NoError(t, c.Register(context.Background(), "Jane Doe", "jane@example.com", "s3cret"))

	assert.Equal(t, "fresh-token", c.Session().Token)

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", persisted.Token)
}

func TestClientLoginSendsTokenAfterwards(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/auth":
			json.NewEncoder(w).Encode(devlink.TokenResponse{Token: "login-token"})
		case r.Method == http.MethodGet && r.URL.Path == "/api/auth":
			assert.Equal(t, "login-token", r.Header.Get("x-auth-token"))
			json.NewEncoder(w).Encode(devlink.User{ID: uuid.New(), Name: "Jane", Email: "jane@example.com"})
		default:
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
	})

	c, err := client.New(server.URL)
	require.NoError(t, err)

	require.NoError(t, c.Login(context.Background(), "jane@example.com", "s3cret"))

	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.Name)
}

func TestClientLoginFailureDecodesEnvelope(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"msg":"Invalid Credentials"}]}`))
	})

	c, err := client.New(server.URL)
	require.NoError(t, err)

	err = c.Login(context.Background(), "jane@example.com", "wrong")
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, []string{"Invalid Credentials"}, apiErr.Messages)
	assert.False(t, apiErr.IsAuthError())
	assert.False(t, c.Session().Valid())
}

func TestClientHydrateClearsRejectedToken(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"msg":"Token is not valid"}`))
	})

	store := client.NewMemorySessionStore()
	require.NoError(t, store.Save(client.Session{Token: "stale-token"}))

	c, err := client.New(server.URL, client.WithSessionStore(store))
	require.NoError(t, err)
	require.True(t, c.Session().Valid())

	user, err := c.Hydrate(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.False(t, c.Session().Valid())

	persisted, err := store.Load()
	require.NoError(t, err)
	assert.False(t, persisted.Valid())
}

func TestClientHydrateWithoutSession(t *testing.T) {
	c, err := client.New("http://localhost:0")
	require.NoError(t, err)

	user, err := c.Hydrate(context.Background())
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestClientHydrateKeepsValidSession(t *testing.T) {
	userID := uuid.New()
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "good-token", r.Header.Get("x-auth-token"))
		json.NewEncoder(w).Encode(devlink.User{ID: userID, Name: "Jane"})
	})

	store := client.NewMemorySessionStore()
	require.NoError(t, store.Save(client.Session{Token: "good-token"}))

	c, err := client.New(server.URL, client.WithSessionStore(store))
	require.NoError(t, err)

	user, err := c.Hydrate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, userID, user.ID)
	assert.True(t, c.Session().Valid())
}

func TestClientDeleteAccountClearsSession(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/profile", r.URL.Path)
		json.NewEncoder(w).Encode(devlink.MessageResponse{Msg: "User deleted"})
	})

	store := client.NewMemorySessionStore()
	require.NoError(t, store.Save(client.Session{Token: "tok"}))

	c, err := client.New(server.URL, client.WithSessionStore(store))
	require.NoError(t, err)

	require.NoError(t, c.DeleteAccount(context.Background()))
	assert.False(t, c.Session().Valid())
}

func TestClientLogout(t *testing.T) {
	store := client.NewMemorySessionStore()
	require.NoError(t, store.Save(client.Session{Token: "tok"}))

	c, err := client.New("http://localhost:0", client.WithSessionStore(store))
	require.NoError(t, err)
	require.True(t, c.Session().Valid())

	require.NoError(t, c.Logout())
	assert.False(t, c.Session().Valid())
}

func TestClientPostLifecycleRoutes(t *testing.T) {
	postID := uuid.New()
	commentID := uuid.New()

	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		switch key {
		case "POST /api/posts":
			var payload devlink.PostPayload
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, "hello world", payload.Text)
			json.NewEncoder(w).Encode(devlink.Post{ID: postID, Text: payload.Text})
		case "PUT /api/posts/like/" + postID.String():
			json.NewEncoder(w).Encode([]devlink.Like{{UserID: uuid.New()}})
		case "PUT /api/posts/unlike/" + postID.String():
			json.NewEncoder(w).Encode([]devlink.Like{})
		case "POST /api/posts/comment/" + postID.String():
			json.NewEncoder(w).Encode([]devlink.Comment{{ID: commentID, Text: "nice"}})
		case "DELETE /api/posts/comment/" + postID.String() + "/" + commentID.String():
			json.NewEncoder(w).Encode([]devlink.Comment{})
		case "DELETE /api/posts/" + postID.String():
			json.NewEncoder(w).Encode(devlink.MessageResponse{Msg: "Post removed"})
		default:
			t.Fatalf("unexpected request: %s", key)
		}
	})

	c, err := client.New(server.URL)
	require.NoError(t, err)
	ctx := context.Background()

	post, err := c.CreatePost(ctx, "hello world")
	require.NoError(t, err)
	assert.Equal(t, postID, post.ID)

	likes, err := c.Like(ctx, postID)
	require.NoError(t, err)
	assert.Len(t, likes, 1)

	likes, err = c.Unlike(ctx, postID)
	require.NoError(t, err)
	assert.Empty(t, likes)

	comments, err := c.Comment(ctx, postID, "nice")
	require.NoError(t, err)
	require.Len(t, comments, 1)

	comments, err = c.DeleteComment(ctx, postID, commentID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	require.NoError(t, c.DeletePost(ctx, postID))
}

func TestClientDecodesPlainBodyError(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream unavailable"))
	})

	c, err := client.New(server.URL)
	require.NoError(t, err)

	_, err = c.Posts(context.Background())
	require.Error(t, err)

	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream unavailable", apiErr.Msg)
}
