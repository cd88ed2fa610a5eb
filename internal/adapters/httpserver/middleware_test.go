package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestLoggingLevelByStatus(t *testing.T) {
	prev := log.Logger
	defer func() { log.Logger = prev }()

	cases := []struct {
		status int
		level  string
	}{
		{http.StatusOK, "info"},
		{http.StatusNotFound, "warn"},
		{http.StatusConflict, "warn"},
		{http.StatusInternalServerError, "error"},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		log.Logger = zerolog.New(&buf)
		h := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/clients", nil))

		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("status %d: decode log line %q: %v", c.status, buf.String(), err)
		}
		if entry["level"] != c.level {
			t.Fatalf("status %d: expected level %s got %v", c.status, c.level, entry["level"])
		}
		if int(entry["status"].(float64)) != c.status {
			t.Fatalf("status %d not logged: %v", c.status, entry)
		}
	}
}
