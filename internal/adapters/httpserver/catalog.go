package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/phenrril/bicitaller/internal/domain"
	"github.com/phenrril/bicitaller/internal/usecase"
)

var deleted = map[string]bool{"deleted": true}

// --- Clientes y bicicletas ---

func (s *Server) apiClients(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.clients.List(r.Context(), sess)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var c domain.Client
		if err := decode(w, r, &c); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.clients.Create(r.Context(), sess, &c); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, c)
	default:
		methodNotAllowed(w)
	}
}

// /api/clients/{id} y /api/clients/{id}/bikes
func (s *Server) apiClientByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	parts := pathParts(r, "/api/clients/")
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
		if parts[1] != "bikes" {
			http.NotFound(w, r)
			return
		}
		s.clientBikes(w, r, sess, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := s.clients.Get(r.Context(), sess, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodPut:
		var p usecase.ClientPatch
		if err := decode(w, r, &p); err != nil {
			writeError(w, r, err)
			return
		}
		c, err := s.clients.Update(r.Context(), sess, id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, c)
	case http.MethodDelete:
		if err := s.clients.Delete(r.Context(), sess, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleted)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) clientBikes(w http.ResponseWriter, r *http.Request, sess domain.Session, clientID uuid.UUID) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.clients.ListBikes(r.Context(), sess, clientID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var b domain.Bike
		if err := decode(w, r, &b); err != nil {
			writeError(w, r, err)
			return
		}
		b.ClientID = clientID
		if err := s.clients.CreateBike(r.Context(), sess, &b); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) apiBikeByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	parts := pathParts(r, "/api/bikes/")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	id, err := parseID("id", parts[0])
	if err != nil {
		writeError(w, r, err)
		return
	}
	switch r.Method {
	case http.MethodPut:
		var p usecase.BikePatch
		if err := decode(w, r, &p); err != nil {
			writeError(w, r, err)
			return
		}
		b, err := s.clients.UpdateBike(r.Context(), sess, id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	case http.MethodDelete:
		if err := s.clients.DeleteBike(r.Context(), sess, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleted)
	default:
		methodNotAllowed(w)
	}
}

// --- Inventario ---

func (s *Server) apiInventory(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.inventory.List(r.Context(), sess)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var it domain.InventoryItem
		if err := decode(w, r, &it); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.inventory.Create(r.Context(), sess, &it); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, it)
	default:
		methodNotAllowed(w)
	}
}

// /api/inventory/{id}, /api/inventory/{id}/stock y /api/inventory/low-stock
func (s *Server) apiInventoryByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	parts := pathParts(r, "/api/inventory/")
	if len(parts) == 0 || len(parts) > 2 {
		http.NotFound(w, r)
		return
	}
	if parts[0] == "low-stock" && len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		list, err := s.inventory.LowStock(r.Context(), sess)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
		return
	}
	id, err := parseID("id", parts[0])
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(parts) == 2 {
		if parts[1] != "stock" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var body struct {
			Delta decimal.Decimal `json:"delta"`
		}
		if err := decode(w, r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		it, err := s.inventory.AdjustStock(r.Context(), sess, id, body.Delta)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, it)
		return
	}

	switch r.Method {
	case http.MethodGet:
		it, err := s.inventory.Get(r.Context(), sess, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, it)
	case http.MethodPut:
		var p usecase.ItemPatch
		if err := decode(w, r, &p); err != nil {
			writeError(w, r, err)
			return
		}
		it, err := s.inventory.Update(r.Context(), sess, id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, it)
	case http.MethodDelete:
		if err := s.inventory.Delete(r.Context(), sess, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleted)
	default:
		methodNotAllowed(w)
	}
}

// --- Servicios ---

func (s *Server) apiServices(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	switch r.Method {
	case http.MethodGet:
		list, err := s.services.List(r.Context(), sess)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var svc domain.ServiceEntry
		if err := decode(w, r, &svc); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.services.Create(r.Context(), sess, &svc); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, svc)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) apiServiceByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	parts := pathParts(r, "/api/services/")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	id, err := parseID("id", parts[0])
	if err != nil {
		writeError(w, r, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		svc, err := s.services.Get(r.Context(), sess, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, svc)
	case http.MethodPut:
		var p usecase.ServicePatch
		if err := decode(w, r, &p); err != nil {
			writeError(w, r, err)
			return
		}
		svc, err := s.services.Update(r.Context(), sess, id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, svc)
	case http.MethodDelete:
		if err := s.services.Delete(r.Context(), sess, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleted)
	default:
		methodNotAllowed(w)
	}
}

// --- Mecánicos ---

func (s *Server) apiMechanics(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	switch r.Method {
	case http.MethodGet:
		all := r.URL.Query().Get("all") == "1" || r.URL.Query().Get("all") == "true"
		list, err := s.mechanics.List(r.Context(), sess, all)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var m domain.Mechanic
		if err := decode(w, r, &m); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.mechanics.Create(r.Context(), sess, &m); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) apiMechanicByID(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	parts := pathParts(r, "/api/mechanics/")
	if len(parts) != 1 {
		http.NotFound(w, r)
		return
	}
	id, err := parseID("id", parts[0])
	if err != nil {
		writeError(w, r, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		m, err := s.mechanics.Get(r.Context(), sess, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodPut:
		var p usecase.MechanicPatch
		if err := decode(w, r, &p); err != nil {
			writeError(w, r, err)
			return
		}
		m, err := s.mechanics.Update(r.Context(), sess, id, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodDelete:
		if err := s.mechanics.Delete(r.Context(), sess, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleted)
	default:
		methodNotAllowed(w)
	}
}
