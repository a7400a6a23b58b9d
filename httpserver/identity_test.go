package httpserver

import (
	"errors"
	"net/http"
	"testing"

	"guesser/models"
	"guesser/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func expectStartFor(games *service.MockGameService, owner models.Owner) {
	games.On("Start", mock.Anything, mock.AnythingOfType("string"), owner, "").
		Return(&service.ActionResult{Message: "started"}, nil)
}

func TestIdentity_BearerTokenForExistingUser(t *testing.T) {
	s, games, users := newTestServer(t)
	users.On("GetByID", mock.Anything, int64(7)).Return(&models.User{ID: 7, Username: "alice"}, nil)
	expectStartFor(games, models.NewUserOwner(7))

	rec := do(s, http.MethodPost, "/game/start", "", withBearer(signToken(t, testSecret, "7")))

	require.Equal(t, http.StatusOK, rec.Code)
	_, setGuest := cookieValue(rec, guestCookieName)
	assert.False(t, setGuest)
	games.AssertExpectations(t)
}

func TestIdentity_FallsBackToGuest(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
		setup func(users *service.MockUserRepository)
	}{
		{
			name:  "deleted user",
			token: func(t *testing.T) string { return signToken(t, testSecret, "7") },
			setup: func(users *service.MockUserRepository) {
				users.On("GetByID", mock.Anything, int64(7)).Return(nil, nil)
			},
		},
		{
			name:  "lookup failure",
			token: func(t *testing.T) string { return signToken(t, testSecret, "7") },
			setup: func(users *service.MockUserRepository) {
				users.On("GetByID", mock.Anything, int64(7)).Return(nil, errors.New("db down"))
			},
		},
		{
			name:  "wrong secret",
			token: func(t *testing.T) string { return signToken(t, "other-secret", "7") },
		},
		{
			name:  "non-numeric subject",
			token: func(t *testing.T) string { return signToken(t, testSecret, "alice") },
		},
		{
			name: "unsigned token",
			token: func(t *testing.T) string {
				signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7"}).
					SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return signed
			},
		},
		{
			name:  "garbage",
			token: func(t *testing.T) string { return "not-a-jwt" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, games, users := newTestServer(t)
			if tt.setup != nil {
				tt.setup(users)
			}
			expectStartFor(games, models.NewGuestOwner(testGuest))

			rec := do(s, http.MethodPost, "/game/start", "", withBearer(tt.token(t)))

			require.Equal(t, http.StatusOK, rec.Code)
			guest, ok := cookieValue(rec, guestCookieName)
			assert.True(t, ok)
			assert.Equal(t, testGuest, guest)
			games.AssertExpectations(t)
		})
	}
}

func TestIdentity_DisabledWithoutSecret(t *testing.T) {
	games := new(service.MockGameService)
	users := new(service.MockUserRepository)
	identity := NewIdentity("", users, false, 0)
	identity.guestLabel = func() string { return testGuest }
	s := New(games, identity, nil)
	expectStartFor(games, models.NewGuestOwner(testGuest))

	rec := do(s, http.MethodPost, "/game/start", "", withBearer(signToken(t, testSecret, "7")))

	assert.Equal(t, http.StatusOK, rec.Code)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestIdentity_ReplacesMalformedCookies(t *testing.T) {
	s, games, _ := newTestServer(t)
	expectStartFor(games, models.NewGuestOwner(testGuest))

	rec := do(s, http.MethodPost, "/game/start", "", withCookies(
		&http.Cookie{Name: sessionCookieName, Value: "not-a-uuid"},
		&http.Cookie{Name: guestCookieName, Value: "Guest-0001"},
	))

	require.Equal(t, http.StatusOK, rec.Code)
	sid, ok := cookieValue(rec, sessionCookieName)
	require.True(t, ok)
	_, err := uuid.Parse(sid)
	assert.NoError(t, err)

	guest, ok := cookieValue(rec, guestCookieName)
	assert.True(t, ok)
	assert.Equal(t, testGuest, guest)
}

func TestIdentity_CookieAttributes(t *testing.T) {
	games := new(service.MockGameService)
	identity := NewIdentity(testSecret, nil, true, 0)
	s := New(games, identity, nil)
	games.On("Start", mock.Anything, mock.Anything, mock.Anything, "").Return(&service.ActionResult{}, nil)

	rec := do(s, http.MethodPost, "/game/start", "")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.True(t, c.HttpOnly, c.Name)
		assert.True(t, c.Secure, c.Name)
		assert.Equal(t, http.SameSiteLaxMode, c.SameSite, c.Name)
		assert.Equal(t, "/", c.Path, c.Name)
	}
}

func TestRandomGuestLabel(t *testing.T) {
	for range 200 {
		assert.Regexp(t, guestLabelPattern, randomGuestLabel())
	}
}
