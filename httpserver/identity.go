package httpserver

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"guesser/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	sessionCookieName = "guesser_sid"
	guestCookieName   = "guesser_guest"
	guestCookieMaxAge = 365 * 24 * time.Hour
)

var guestLabelPattern = regexp.MustCompile(`^Guest-[1-9][0-9]{3}$`)

// UserLookup resolves registered users from token subjects
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type ctxKey int

const (
	ownerKey ctxKey = iota
	sessionKey
)

// Identity attaches a game owner and a session ID to every request.
// A valid bearer token for an existing user wins; anyone else plays under a guest label kept in a cookie.
type Identity struct {
	secret        []byte
	users         UserLookup
	secureCookies bool
	sessionTTL    time.Duration
	guestLabel    func() string
}

// NewIdentity creates the identity resolver. An empty secret disables token auth.
func NewIdentity(secret string, users UserLookup, secureCookies bool, sessionTTL time.Duration) *Identity {
	return &Identity{
		secret:        []byte(secret),
		users:         users,
		secureCookies: secureCookies,
		sessionTTL:    sessionTTL,
		guestLabel:    randomGuestLabel,
	}
}

// Middleware resolves identity before the game handlers run
func (i *Identity) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		owner := i.resolveOwner(w, r)
		sessionID := i.ensureSessionID(w, r)

		ctx := context.WithValue(r.Context(), ownerKey, owner)
		ctx = context.WithValue(ctx, sessionKey, sessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OwnerFrom returns the owner resolved for the request
func OwnerFrom(ctx context.Context) (models.Owner, bool) {
	owner, ok := ctx.Value(ownerKey).(models.Owner)
	return owner, ok
}

// SessionIDFrom returns the session ID resolved for the request
func SessionIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionKey).(string)
	return id, ok && id != ""
}

func (i *Identity) resolveOwner(w http.ResponseWriter, r *http.Request) models.Owner {
	if token := bearerToken(r); token != "" {
		userID, err := i.authenticate(r.Context(), token)
		if err == nil {
			return models.NewUserOwner(userID)
		}
		log.WithFields(log.Fields{
			"path":  r.URL.Path,
			"error": err,
		}).Debug("Ignoring bearer token")
	}
	return models.NewGuestOwner(i.ensureGuestLabel(w, r))
}

// authenticate validates the token and ensures the user still exists
func (i *Identity) authenticate(ctx context.Context, tokenString string) (int64, error) {
	if len(i.secret) == 0 {
		return 0, errors.New("token auth disabled")
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("invalid subject %q", claims.Subject)
	}

	if i.users == nil {
		return 0, errors.New("no user lookup configured")
	}
	user, err := i.users.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("lookup user %d: %w", userID, err)
	}
	if user == nil {
		return 0, fmt.Errorf("user %d not found", userID)
	}
	return user.ID, nil
}

func (i *Identity) ensureGuestLabel(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(guestCookieName); err == nil && guestLabelPattern.MatchString(c.Value) {
		return c.Value
	}
	label := i.guestLabel()
	http.SetCookie(w, i.cookie(guestCookieName, label, guestCookieMaxAge))
	return label
}

func (i *Identity) ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, i.cookie(sessionCookieName, id, i.sessionTTL))
	return id
}

func (i *Identity) cookie(name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   i.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func randomGuestLabel() string {
	return fmt.Sprintf("Guest-%d", 1000+rand.IntN(9000))
}
