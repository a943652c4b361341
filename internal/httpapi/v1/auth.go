package v1

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"
)

var errBadToken = errors.New("invalid bearer token")

type jwtClaims struct {
	Issuer    string `json:"iss,omitempty"`
	Subject   string `json:"sub,omitempty"`
	Audience  any    `json:"aud,omitempty"` // string or []string
	ExpiresAt int64  `json:"exp,omitempty"`
	NotBefore int64  `json:"nbf,omitempty"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 8 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// segment decodes one base64url token segment, tolerating missing padding.
func segment(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
}

func verifyHS256(token string, secret []byte) (jwtClaims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return jwtClaims{}, errBadToken
	}

	headerB, err := segment(parts[0])
	if err != nil {
		return jwtClaims{}, errBadToken
	}
	var hdr struct{ Alg, Typ string }
	if err := json.Unmarshal(headerB, &hdr); err != nil || !strings.EqualFold(hdr.Alg, "HS256") {
		return jwtClaims{}, errBadToken
	}

	sig, err := segment(parts[2])
	if err != nil {
		return jwtClaims{}, errBadToken
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(parts[0] + "." + parts[1]))
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return jwtClaims{}, errBadToken
	}

	payloadB, err := segment(parts[1])
	if err != nil {
		return jwtClaims{}, errBadToken
	}
	var claims jwtClaims
	if err := json.Unmarshal(payloadB, &claims); err != nil {
		return jwtClaims{}, errBadToken
	}
	return claims, nil
}

// accept reports whether the claims pass the time window and the optional
// issuer/audience checks.
func (c jwtClaims) accept(now int64, iss, aud string) bool {
	if c.NotBefore != 0 && now < c.NotBefore {
		return false
	}
	if c.ExpiresAt != 0 && now >= c.ExpiresAt {
		return false
	}
	if iss != "" && !strings.EqualFold(c.Issuer, iss) {
		return false
	}
	return aud == "" || c.audienceHas(aud)
}

func (c jwtClaims) audienceHas(expected string) bool {
	switch v := c.Audience.(type) {
	case string:
		return strings.EqualFold(v, expected)
	case []any:
		for _, it := range v {
			if s, ok := it.(string); ok && strings.EqualFold(s, expected) {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if strings.EqualFold(s, expected) {
				return true
			}
		}
	}
	return false
}

// authJWTFromEnv returns a middleware enforcing Authorization: Bearer (HS256)
// when JWT_HS256_SECRET is set, nil otherwise. JWT_ISSUER and JWT_AUDIENCE
// add optional claim checks. Health, metrics, and the read-only dictionary
// stay open.
func authJWTFromEnv() func(http.Handler) http.Handler {
	secretStr := strings.TrimSpace(os.Getenv("JWT_HS256_SECRET"))
	if secretStr == "" {
		return nil
	}
	secret := []byte(secretStr)
	iss := strings.TrimSpace(os.Getenv("JWT_ISSUER"))
	aud := strings.TrimSpace(os.Getenv("JWT_AUDIENCE"))

	open := map[string]bool{"/healthz": true, "/readyz": true, "/metrics": true}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open[r.URL.Path] || strings.HasPrefix(r.URL.Path, "/v1/dictionary/") {
				next.ServeHTTP(w, r)
				return
			}
			tok := bearerToken(r)
			if tok == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			claims, err := verifyHS256(tok, secret)
			if err != nil || !claims.accept(time.Now().Unix(), iss, aud) {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
