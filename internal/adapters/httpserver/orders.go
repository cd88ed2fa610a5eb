package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/bicitaller/internal/domain"
	"github.com/phenrril/bicitaller/internal/usecase"
)

func (s *Server) apiOrders(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	switch r.Method {
	case http.MethodGet:
		q := r.URL.Query()
		clientID, err := optionalID("client_id", q.Get("client_id"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		page, _ := strconv.Atoi(q.Get("page"))
		size, _ := strconv.Atoi(q.Get("page_size"))
		list, total, err := s.orders.List(r.Context(), sess, domain.OrderFilter{
			Status:   domain.ProcessStatus(q.Get("status")),
			ClientID: clientID,
			Page:     page,
			PageSize: size,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": total})
	case http.MethodPost:
		var in usecase.NewOrder
		if err := decode(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
		o, err := s.orders.Create(r.Context(), sess, in)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, o)
	default:
		methodNotAllowed(w)
	}
}

// /api/orders/{id}[/services|/products|/transition]
func (s *Server) apiOrderByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	parts := pathParts(r, "/api/orders/")
	if len(parts) == 0 || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}
	id, err := parseID("id", parts[0])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(parts) == 2 {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		switch parts[1] {
		case "services":
			s.orderAddService(w, r, sess, id)
		case "products":
			s.orderAddProduct(w, r, sess, id)
		case "transition":
			s.orderTransition(w, r, sess, id)
		default:
			http.NotFound(w, r)
		}
		return
	}

	switch r.Method {
	case http.MethodGet:
		o, err := s.orders.Get(r.Context(), sess, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	case http.MethodDelete:
		if err := s.orders.Delete(r.Context(), sess, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleted)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) orderAddService(w http.ResponseWriter, r *http.Request, sess domain.Session, orderID uuid.UUID) {
	var body struct {
		ServiceID  uuid.UUID `json:"service_id"`
		MechanicID uuid.UUID `json:"mechanic_id"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	lines, total, err := s.orders.AddService(r.Context(), sess, orderID, body.ServiceID, body.MechanicID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"lines": lines, "total": total})
}

func (s *Server) orderAddProduct(w http.ResponseWriter, r *http.Request, sess domain.Session, orderID uuid.UUID) {
	var body struct {
		ItemID     uuid.UUID       `json:"item_id"`
		Quantity   decimal.Decimal `json:"quantity"`
		MechanicID uuid.UUID       `json:"mechanic_id"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	line, total, err := s.orders.AddProduct(r.Context(), sess, orderID, body.ItemID, body.Quantity, body.MechanicID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"line": line, "total": total})
}

func (s *Server) orderTransition(w http.ResponseWriter, r *http.Request, sess domain.Session, orderID uuid.UUID) {
	var body struct {
		To domain.ProcessStatus `json:"to"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	o, err := s.orders.Transition(r.Context(), sess, orderID, body.To)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// --- Comisiones ---

func (s *Server) apiCommissions(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	mech, err := optionalID("mechanic_id", q.Get("mechanic_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	f := domain.CommissionFilter{MechanicID: mech, Status: domain.CommissionStatus(q.Get("status"))}
	loc := s.location()
	if ds := q.Get("from"); ds != "" {
		if f.From, err = time.ParseInLocation(dayLayout, ds, loc); err != nil {
			writeError(w, r, domain.Invalid("from", "fecha inválida, usar AAAA-MM-DD"))
			return
		}
	}
	if ds := q.Get("to"); ds != "" {
		to, err := time.ParseInLocation(dayLayout, ds, loc)
		if err != nil {
			writeError(w, r, domain.Invalid("to", "fecha inválida, usar AAAA-MM-DD"))
			return
		}
		f.To = to.AddDate(0, 0, 1)
	}
	list, err := s.commissions.List(r.Context(), sess, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) apiCommissionsSettle(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body struct {
		IDs []uuid.UUID `json:"ids"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	n, err := s.commissions.Settle(r.Context(), sess, body.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"settled": n})
}
