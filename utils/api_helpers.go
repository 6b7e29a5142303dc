package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
)

// RespondJSON sends a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent; nothing left to tell the client.
		fmt.Printf("Error encoding JSON response: %v\n", err)
	}
}

// RespondError sends a JSON error response and records message in the
// request's log line. If logMessage is nil, it prints to stdout.
func RespondError(w http.ResponseWriter, logMessage *strings.Builder, message string, status int) {
	if logMessage != nil {
		AddToLogMessage(logMessage, message)
	} else {
		fmt.Println("[Error]", message)
	}
	RespondJSON(w, status, map[string]string{"error": message})
}

// LatencyMiddleware logs the duration of each request
func LatencyMiddleware(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug("request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// AddToLogMessage appends an entry to the request's log line. Entries are
// kept on one line so the structured logger prints a single record.
func AddToLogMessage(logMessagesBuilder *strings.Builder, strToAdd string) {
	if logMessagesBuilder.Len() > 0 {
		logMessagesBuilder.WriteString("; ")
	}
	logMessagesBuilder.WriteString(strings.TrimSpace(strToAdd))
}
