package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/phenrril/bicitaller/internal/domain"
)

var watchable = map[string]bool{
	domain.TableClients:     true,
	domain.TableBikes:       true,
	domain.TableInventory:   true,
	domain.TableServices:    true,
	domain.TableRecipes:     true,
	domain.TableMechanics:   true,
	domain.TableOrders:      true,
	domain.TableOrderLines:  true,
	domain.TableCommissions: true,
}

// apiChanges emite por SSE un evento por cada cambio del tenant en las tablas
// pedidas. El evento sólo dice qué tabla cambió; el cliente vuelve a consultar.
func (s *Server) apiChanges(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	if s.feed == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "feed no configurado"})
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming no soportado"})
		return
	}
	var tables []string
	for _, t := range strings.Split(r.URL.Query().Get("tables"), ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !watchable[t] {
			writeError(w, r, domain.Invalid("tables", "tabla desconocida: "+t))
			return
		}
		tables = append(tables, t)
	}
	if len(tables) == 0 {
		writeError(w, r, domain.Invalid("tables", "requerido"))
		return
	}

	ch, err := s.feed.Subscribe(r.Context(), tables...)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": ok\n\n")
	flusher.Flush()

	ping := time.NewTicker(25 * time.Second)
	defer ping.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case c, ok := <-ch:
			if !ok {
				return
			}
			if c.TenantID != sess.TenantID {
				continue
			}
			b, _ := json.Marshal(c)
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", b)
			flusher.Flush()
		}
	}
}
