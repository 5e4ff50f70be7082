package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// APIKeyHeader carries the client key. "Authorization: Bearer <key>" is
// accepted as well.
const APIKeyHeader = "X-API-Key"

// KeyVerifier checks presented API keys against a plain key or a bcrypt hash.
type KeyVerifier struct {
	plain []byte
	hash  []byte

	mu       sync.Mutex
	verified map[[sha256.Size]byte]bool // bcrypt results, keyed by digest
}

// NewKeyVerifier returns nil when neither a key nor a hash is configured,
// which disables authentication.
func NewKeyVerifier(plain, hash string) *KeyVerifier {
	if plain == "" && hash == "" {
		return nil
	}
	return &KeyVerifier{
		plain:    []byte(plain),
		hash:     []byte(hash),
		verified: make(map[[sha256.Size]byte]bool),
	}
}

// Verify reports whether key is accepted.
func (v *KeyVerifier) Verify(key string) bool {
	if key == "" {
		return false
	}
	if len(v.plain) > 0 && subtle.ConstantTimeCompare([]byte(key), v.plain) == 1 {
		return true
	}
	if len(v.hash) == 0 {
		return false
	}

	digest := sha256.Sum256([]byte(key))
	v.mu.Lock()
	ok, seen := v.verified[digest]
	v.mu.Unlock()
	if seen {
		return ok
	}
	ok = bcrypt.CompareHashAndPassword(v.hash, []byte(key)) == nil
	if ok {
		v.mu.Lock()
		v.verified[digest] = true
		v.mu.Unlock()
	}
	return ok
}

// RequireAPIKey blocks requests without a valid key. A nil verifier lets
// every request through.
func RequireAPIKey(v *KeyVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !v.Verify(presentedKey(r)) {
				slog.Warn("auth_rejected", "ip", ClientIP(r), "path", r.URL.Path)
				WriteError(w, http.StatusUnauthorized, "missing or invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func presentedKey(r *http.Request) string {
	if k := r.Header.Get(APIKeyHeader); k != "" {
		return k
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
