package httpserver

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/phenrril/bicitaller/internal/domain"
)

// Claims es lo que emite el proveedor de identidad. El servidor no crea
// tokens, sólo los verifica.
type Claims struct {
	UserID   string `json:"uid"`
	TenantID string `json:"tenant_id"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Session() (domain.Session, error) {
	tenant, err := uuid.Parse(c.TenantID)
	if err != nil {
		return domain.Session{}, domain.Invalid("tenant_id", "uuid inválido")
	}
	var user uuid.UUID
	if c.UserID != "" {
		if user, err = uuid.Parse(c.UserID); err != nil {
			return domain.Session{}, domain.Invalid("uid", "uuid inválido")
		}
	}
	s := domain.Session{TenantID: tenant, UserID: user, Role: domain.Role(strings.ToLower(c.Role))}
	if err := s.Validate(); err != nil {
		return domain.Session{}, err
	}
	return s, nil
}

type apiHandler func(w http.ResponseWriter, r *http.Request, sess domain.Session)

// api exige un JWT válido y pasa la sesión resultante al handler.
func (s *Server) api(h apiHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := bearerToken(r)
		if tok == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "falta el token"})
			return
		}
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
			return s.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "token inválido o vencido"})
			return
		}
		sess, err := claims.Session()
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
			return
		}
		h(w, r, sess)
	})
}

// bearerToken lee Authorization y, para EventSource que no manda headers, ?token=.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	return r.URL.Query().Get("token")
}
