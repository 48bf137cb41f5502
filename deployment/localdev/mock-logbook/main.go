package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

type foodEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  string    `json:"quantity,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type symptomEntry struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Intensity int       `json:"intensity"`
	Timestamp time.Time `json:"timestamp"`
}

type rangeRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func main() {
	foods, symptoms := seed(time.Now().UTC(), 45)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/v1/logbook/foods", func(w http.ResponseWriter, r *http.Request) {
		window, ok := decodeRange(w, r)
		if !ok {
			return
		}
		out := make([]foodEntry, 0)
		for _, f := range foods {
			if inRange(f.Timestamp, window) {
				out = append(out, f)
			}
		}
		writeJSON(w, map[string]any{"foods": out})
	})

	mux.HandleFunc("/api/v1/logbook/symptoms", func(w http.ResponseWriter, r *http.Request) {
		window, ok := decodeRange(w, r)
		if !ok {
			return
		}
		out := make([]symptomEntry, 0)
		for _, s := range symptoms {
			if inRange(s.Timestamp, window) {
				out = append(out, s)
			}
		}
		writeJSON(w, map[string]any{"symptoms": out})
	})

	logger := log.New(log.Writer(), "logbook-mock ", log.LstdFlags|log.Lmicroseconds)
	srv := &http.Server{
		Addr:    ":8090",
		Handler: logRequests(logger, mux),
	}

	logger.Printf("serving %d foods and %d symptoms on :8090", len(foods), len(symptoms))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server error: %v", err)
	}
}

// seed builds a diary where milk at breakfast precedes bloating on most days and coffee
// precedes an afternoon headache every third day.
func seed(now time.Time, days int) ([]foodEntry, []symptomEntry) {
	var foods []foodEntry
	var symptoms []symptomEntry
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
	for d := 0; d < days; d++ {
		day := start.AddDate(0, 0, d)
		breakfast := day.Add(8 * time.Hour)
		foods = append(foods,
			foodEntry{ID: fmt.Sprintf("f-%d-1", d), Name: "milk", Quantity: "1 glass", Timestamp: breakfast},
			foodEntry{ID: fmt.Sprintf("f-%d-2", d), Name: "bread", Timestamp: day.Add(13 * time.Hour)},
		)
		if d%5 != 0 {
			symptoms = append(symptoms, symptomEntry{
				ID: fmt.Sprintf("s-%d-1", d), Type: "Bloating", Intensity: 5 + d%4, Timestamp: breakfast.Add(90 * time.Minute),
			})
		}
		if d%3 == 0 {
			coffee := day.Add(10 * time.Hour)
			foods = append(foods, foodEntry{ID: fmt.Sprintf("f-%d-3", d), Name: "coffee", Timestamp: coffee})
			symptoms = append(symptoms, symptomEntry{
				ID: fmt.Sprintf("s-%d-2", d), Type: "Headache", Intensity: 4, Timestamp: coffee.Add(3 * time.Hour),
			})
		}
	}
	return foods, symptoms
}

func decodeRange(w http.ResponseWriter, r *http.Request) (rangeRequest, bool) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return rangeRequest{}, false
	}
	var req rangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid range", http.StatusBadRequest)
		return rangeRequest{}, false
	}
	return req, true
}

func inRange(t time.Time, window rangeRequest) bool {
	return !t.Before(window.Start) && !t.After(window.End)
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode error: %v", err)
	}
}

func logRequests(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		logger.Printf("%s %s %d %s", r.Method, r.URL.Path, rw.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
