package metrics

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pecron-mqtt-bridge/pkg/health"
	"pecron-mqtt-bridge/pkg/logger"
	"pecron-mqtt-bridge/pkg/registry"
)

// AccountHealth is the per-account section of the health report
type AccountHealth struct {
	Online             bool      `json:"online"`
	LastSuccessfulPoll time.Time `json:"last_successful_poll"`
	ConsecutiveErrors  int       `json:"consecutive_errors"`
	ErrorCount         int       `json:"error_count"`
	SuccessCount       int       `json:"success_count"`
}

// HealthReport is the JSON body served on /health
type HealthReport struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Uptime    string                   `json:"uptime"`
	Accounts  map[string]AccountHealth `json:"accounts"`
}

// Server exposes /metrics and /health for the bridge
type Server struct {
	listen    string
	startTime time.Time
	monitors  map[string]*health.CloudHealthMonitor
	promReg   *prometheus.Registry
	srv       *http.Server
}

// NewServer wires the collector over the coordinator registry and the health
// monitors into an HTTP server on the given listen address.
func NewServer(listen string, reg *registry.Registry, monitors map[string]*health.CloudHealthMonitor) *Server {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(NewCollector(reg))

	s := &Server{
		listen:    listen,
		startTime: time.Now(),
		monitors:  monitors,
		promReg:   promReg,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", s.handleHealth)
	s.srv = &http.Server{
		Addr:         listen,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown or a listener error
func (s *Server) ListenAndServe() error {
	logger.LogInfo("Metrics server listening on %s", s.listen)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	report := HealthReport{
		Status:    "healthy",
		Timestamp: time.Now(),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Accounts:  make(map[string]AccountHealth),
	}

	code := http.StatusOK
	for id, mon := range s.monitors {
		ah := AccountHealth{
			Online:             mon.IsOnline(),
			LastSuccessfulPoll: mon.GetLastSuccessTime(),
			ConsecutiveErrors:  mon.GetConsecutiveErrors(),
			ErrorCount:         mon.GetErrorCount(),
			SuccessCount:       mon.GetSuccessCount(),
		}
		if !ah.Online {
			report.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		report.Accounts[id] = ah
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		logger.LogError("Failed to encode health report: %v", err)
	}
}
