package httpserver

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phenrril/bicitaller/internal/adapters/report"
	"github.com/phenrril/bicitaller/internal/domain"
)

const (
	dayLayout = "2006-01-02"
	xlsxType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) location() *time.Location {
	if s.finance != nil && s.finance.Location != nil {
		return s.finance.Location
	}
	return time.UTC
}

// ledgerFromQuery lee ?period= (month por defecto) y ?date= (hoy por defecto).
func (s *Server) ledgerFromQuery(r *http.Request, sess domain.Session) (*domain.Ledger, error) {
	q := r.URL.Query()
	period := domain.Period(strings.ToLower(q.Get("period")))
	if period == "" {
		period = domain.PeriodMonth
	}
	ref := time.Now().In(s.location())
	if ds := q.Get("date"); ds != "" {
		d, err := time.ParseInLocation(dayLayout, ds, s.location())
		if err != nil {
			return nil, domain.Invalid("date", "fecha inválida, usar AAAA-MM-DD")
		}
		ref = d
	}
	return s.finance.Ledger(r.Context(), sess, period, ref)
}

func (s *Server) apiLedger(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	l, err := s.ledgerFromQuery(r, sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if strings.ToLower(r.URL.Query().Get("format")) == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", "attachment; filename="+report.FileName(l, "csv"))
		if err := report.WriteCSV(w, l); err != nil {
			log.Error().Err(err).Msg("ledger csv")
		}
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) apiLedgerXLSX(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	l, err := s.ledgerFromQuery(r, sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := report.XLSX(l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", "attachment; filename="+report.FileName(l, "xlsx"))
	_, _ = w.Write(data)
}

// apiLedgerArchive guarda el XLSX del período en el almacenamiento configurado.
func (s *Server) apiLedgerArchive(w http.ResponseWriter, r *http.Request, sess domain.Session) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if s.storage == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "almacenamiento no configurado"})
		return
	}
	l, err := s.ledgerFromQuery(r, sess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := report.XLSX(l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("%s/%s/%s", sess.TenantID, l.Period, report.FileName(l, "xlsx"))
	loc, err := s.storage.Save(r.Context(), name, bytes.NewReader(data), int64(len(data)), xlsxType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.Info().Str("tenant", sess.TenantID.String()).Str("location", loc).Msg("libro de caja archivado")
	writeJSON(w, http.StatusCreated, map[string]string{"location": loc})
}
