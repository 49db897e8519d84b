package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionCookie names the cookie that carries the conversation id.
const SessionCookie = "espchat_session"

// sessionClaims identifies a conversation. Subject is the session id.
type sessionClaims struct {
	jwt.RegisteredClaims
}

type sessionManager struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

func newSessionManager(secret string, ttl time.Duration, secure bool) *sessionManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &sessionManager{secret: []byte(secret), ttl: ttl, secure: secure}
}

// issue signs a token for a fresh session id.
func (m *sessionManager) issue() (string, string, error) {
	id := uuid.NewString()
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", err
	}
	return id, token, nil
}

// parse returns the session id carried by a valid token.
func (m *sessionManager) parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	claims, ok := token.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("invalid session claims")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return claims.Subject, nil
}

// session returns the request's session id, issuing a new cookie when the
// request has none or carries one that does not verify.
func (r *Router) session(w http.ResponseWriter, req *http.Request) (string, error) {
	if c, err := req.Cookie(SessionCookie); err == nil {
		if id, err := r.sessions.parse(c.Value); err == nil {
			return id, nil
		}
		r.logger.Debug("session: replacing invalid cookie")
	}

	id, token, err := r.sessions.issue()
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(r.sessions.ttl.Seconds()),
		HttpOnly: true,
		Secure:   r.sessions.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}
