package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		level   logrus.Level
		message string
	}{
		{"success", http.StatusOK, logrus.InfoLevel, "Request handled"},
		{"client error", http.StatusNotFound, logrus.WarnLevel, "Request rejected"},
		{"server error", http.StatusInternalServerError, logrus.ErrorLevel, "Request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := logtest.NewNullLogger()
			handler := RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("body"))
			}))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/tracking/stats", nil))

			require.Len(t, hook.Entries, 1)
			entry := hook.LastEntry()
			assert.Equal(t, tt.level, entry.Level)
			assert.Equal(t, tt.message, entry.Message)
			assert.Equal(t, tt.status, entry.Data["status"])
			assert.Equal(t, "/api/tracking/stats", entry.Data["path"])
			assert.Equal(t, 4, entry.Data["bytes"])
		})
	}
}
