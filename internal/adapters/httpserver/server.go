package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/bicitaller/internal/domain"
	"github.com/phenrril/bicitaller/internal/usecase"
)

type Server struct {
	mux         *http.ServeMux
	clients     *usecase.ClientUC
	inventory   *usecase.InventoryUC
	services    *usecase.ServiceUC
	mechanics   *usecase.MechanicUC
	orders      *usecase.OrderUC
	commissions *usecase.CommissionUC
	finance     *usecase.FinanceUC
	storage     domain.FileStorage
	feed        domain.ChangeFeed

	jwtSecret []byte
}

// Deps agrupa lo que el servidor necesita; lo arma internal/app.
type Deps struct {
	Clients     *usecase.ClientUC
	Inventory   *usecase.InventoryUC
	Services    *usecase.ServiceUC
	Mechanics   *usecase.MechanicUC
	Orders      *usecase.OrderUC
	Commissions *usecase.CommissionUC
	Finance     *usecase.FinanceUC
	Storage     domain.FileStorage
	Feed        domain.ChangeFeed
	JWTSecret   string
}

func New(d Deps) http.Handler {
	s := &Server{
		mux:         http.NewServeMux(),
		clients:     d.Clients,
		inventory:   d.Inventory,
		services:    d.Services,
		mechanics:   d.Mechanics,
		orders:      d.Orders,
		commissions: d.Commissions,
		finance:     d.Finance,
		storage:     d.Storage,
		feed:        d.Feed,
	}
	sec := d.JWTSecret
	if sec == "" {
		sec = "dev-insecure"
		log.Warn().Msg("JWT_SECRET vacío, usando secreto de desarrollo")
	}
	s.jwtSecret = []byte(sec)

	s.routes()
	return Chain(s.mux,
		Gzip,
		RequestID,
		Recovery,
		Logging,
	)
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	s.mux.Handle("/api/clients", s.api(s.apiClients))
	s.mux.Handle("/api/clients/", s.api(s.apiClientByID))
	s.mux.Handle("/api/bikes/", s.api(s.apiBikeByID))

	s.mux.Handle("/api/inventory", s.api(s.apiInventory))
	s.mux.Handle("/api/inventory/", s.api(s.apiInventoryByID))

	s.mux.Handle("/api/services", s.api(s.apiServices))
	s.mux.Handle("/api/services/", s.api(s.apiServiceByID))

	s.mux.Handle("/api/mechanics", s.api(s.apiMechanics))
	s.mux.Handle("/api/mechanics/", s.api(s.apiMechanicByID))

	s.mux.Handle("/api/orders", s.api(s.apiOrders))
	s.mux.Handle("/api/orders/", s.api(s.apiOrderByID))

	s.mux.Handle("/api/commissions", s.api(s.apiCommissions))
	s.mux.Handle("/api/commissions/settle", s.api(s.apiCommissionsSettle))

	s.mux.Handle("/api/finance/ledger", s.api(s.apiLedger))
	s.mux.Handle("/api/finance/ledger.xlsx", s.api(s.apiLedgerXLSX))
	s.mux.Handle("/api/finance/archive", s.api(s.apiLedgerArchive))

	s.mux.Handle("/api/changes", s.api(s.apiChanges))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError traduce los errores de dominio a códigos HTTP.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *domain.ValidationError
		de  *domain.DependencyError
		te  *domain.TransitionError
		ure *domain.UnresolvedRecipeError
	)
	body := map[string]any{"error": err.Error()}
	code := http.StatusInternalServerError
	switch {
	case errors.As(err, &ve):
		code = http.StatusBadRequest
		if ve.Field != "" {
			body["field"] = ve.Field
		}
	case errors.Is(err, domain.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.As(err, &de):
		code = http.StatusConflict
		body["relation"] = de.Relation
		body["count"] = de.Count
	case errors.As(err, &te):
		code = http.StatusConflict
		body["from"] = te.From
		body["to"] = te.To
	case errors.As(err, &ure):
		code = http.StatusConflict
		body["missing"] = ure.ItemIDs
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
	}
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", r.URL.Path).Str("req_id", requestIDFrom(r.Context())).Msg("api")
		body["error"] = "error interno"
	}
	writeJSON(w, code, body)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "método no permitido"})
}

const maxBody = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.Invalid("body", "json inválido")
	}
	return nil
}

// pathParts devuelve los segmentos que siguen a prefix: "/api/orders/x/lines" -> [x lines].
func pathParts(r *http.Request, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.Invalid(field, "uuid inválido")
	}
	return id, nil
}

// optionalID acepta vacío como uuid.Nil.
func optionalID(field, raw string) (uuid.UUID, error) {
	if strings.TrimSpace(raw) == "" {
		return uuid.Nil, nil
	}
	return parseID(field, raw)
}
