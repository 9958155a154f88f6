package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// sessionClaims is what a session token proves: the holder started
// session Sid on lesson Lesson.
type sessionClaims struct {
	Sid    string
	Lesson string
}

type contextKey string

var claimsCtxKey = contextKey("session")

var errBadToken = errors.New("invalid session token")

// signSessionToken issues an HS256 token for one play session.
func (s *Server) signSessionToken(sid, lessonID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.SessionTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":    sid,
		"lesson": lessonID,
		"exp":    exp.Unix(),
		"iat":    now.Unix(),
	})
	ss, err := token.SignedString([]byte(s.cfg.SessionSecret))
	return ss, exp, err
}

func (s *Server) parseSessionToken(tokenStr string) (sessionClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.SessionSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return sessionClaims{}, errBadToken
	}
	sid, _ := claims["sid"].(string)
	lesson, _ := claims["lesson"].(string)
	if sid == "" || lesson == "" {
		return sessionClaims{}, errBadToken
	}
	return sessionClaims{Sid: sid, Lesson: lesson}, nil
}

// requireSession admits a request only if its token names the {id} in the path.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := s.bearerOrCookie(r)
		if tokenStr == "" {
			respondError(w, http.StatusUnauthorized, "unauthorized", "missing session token")
			return
		}
		c, err := s.parseSessionToken(tokenStr)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		if c.Sid != chi.URLParam(r, "id") {
			respondError(w, http.StatusUnauthorized, "unauthorized", "token does not match session")
			return
		}
		ctx := context.WithValue(r.Context(), claimsCtxKey, c)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, sid, token string, exp time.Time) {
	http.SetCookie(w, s.sessionCookie(sid, token, exp))
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, sid string) {
	c := s.sessionCookie(sid, "", time.Time{})
	c.MaxAge = -1
	http.SetCookie(w, c)
}

// sessionCookie scopes the cookie to its session's path so that several
// sessions can coexist in one browser.
func (s *Server) sessionCookie(sid, value string, exp time.Time) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if s.cfg.SecureCookies {
		sameSite = http.SameSiteNoneMode
	}
	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/sessions/" + sid,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: sameSite,
		Expires:  exp,
	}
}

func (s *Server) bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}
