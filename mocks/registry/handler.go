package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// confidence is what each registry reports for a confirmed document.
var confidence = map[string]float64{
	"population":            0.95,
	"biometric":             0.9,
	"document_authenticity": 0.85,
	"pkd_certificate_chain": 0.99,
}

type subject struct {
	VerificationCode string `json:"verificationCode"`
	DocumentType     string `json:"documentType"`
	DocumentNumber   string `json:"documentNumber"`
	DocumentHash     string `json:"documentHash"`
}

type answer struct {
	IsValid    bool    `json:"isValid"`
	Confidence float64 `json:"confidence"`
	Reference  string  `json:"reference,omitempty"`
}

func newRouter(log *slog.Logger, latency time.Duration, down map[string]bool) http.Handler {
	r := chi.NewRouter()
	r.Post("/{registry}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "registry")
		conf, known := confidence[name]
		if !known {
			http.Error(w, "unknown registry", http.StatusNotFound)
			return
		}
		if latency > 0 {
			select {
			case <-time.After(latency):
			case <-req.Context().Done():
				return
			}
		}
		if down[name] {
			http.Error(w, "registry unavailable", http.StatusServiceUnavailable)
			return
		}

		var s subject
		if err := json.NewDecoder(req.Body).Decode(&s); err != nil || s.DocumentNumber == "" {
			http.Error(w, "invalid subject", http.StatusBadRequest)
			return
		}

		// Numbers starting with X are unknown to every registry.
		out := answer{IsValid: true, Confidence: conf, Reference: name + ":" + s.VerificationCode}
		if strings.HasPrefix(strings.ToUpper(s.DocumentNumber), "X") {
			out = answer{IsValid: false, Confidence: 0}
		}
		log.InfoContext(req.Context(), "registry answered",
			"registry", name,
			"document_type", s.DocumentType,
			"valid", out.IsValid,
		)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	})
	return r
}
