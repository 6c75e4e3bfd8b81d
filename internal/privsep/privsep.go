// Package privsep stands in for the privilege-separation monitor the
// real controller talks to over an IPC channel. It is routed on
// gorilla/mux rather than the chi router the rest of the control plane
// uses, to keep this process boundary's transport visibly distinct
// from the admin HTTP surface.
package privsep

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// notifyRequest is what NotifyService posts to the monitor.
type notifyRequest struct {
	Service string `json:"service"`
	Style   string `json:"style"`
}

// HTTPMonitor is a client for a fake privsep monitor reachable over
// loopback HTTP, used by cmd/sshauthd when privsep.monitor_addr is
// set. The controller tests use a stub instead.
type HTTPMonitor struct {
	addr   string
	client *http.Client
}

func NewHTTPMonitor(addr string) *HTTPMonitor {
	return &HTTPMonitor{addr: addr, client: &http.Client{}}
}

func (m *HTTPMonitor) NotifyService(ctx context.Context, service, style string) error {
	body, err := json.Marshal(notifyRequest{Service: service, Style: style})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.addr+"/notify", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("privsep monitor unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("privsep monitor refused: status %d", resp.StatusCode)
	}
	return nil
}

// NewRouter builds the monitor-side HTTP surface a test or demo
// process runs to answer HTTPMonitor's requests.
func NewRouter(log *zap.Logger) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/notify", func(w http.ResponseWriter, r *http.Request) {
		var req notifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		log.Info("privsep: service notified", zap.String("service", req.Service), zap.String("style", req.Style))
		w.WriteHeader(http.StatusOK)
	}).Methods(http.MethodPost)
	return r
}
