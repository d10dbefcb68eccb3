package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/govnotify/letterpipe/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSendTicketPostsToSupportSystem(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			t.Fatalf("missing auth header, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewHTTPClient(Params{
		Cfg: config.Config{Alerts: config.AlertsConfig{
			Enabled:     true,
			TicketURL:   srv.URL,
			TicketToken: "token-1",
		}},
		Log: zap.NewNop(),
	})

	err := client.SendTicket(context.Background(), Ticket{
		Subject: "Letters still pending virus check",
		Message: "details",
		Tags:    []string{"notify_letters"},
	})
	if err != nil {
		t.Fatalf("send ticket: %v", err)
	}
	ticket, _ := got["ticket"].(map[string]any)
	if ticket["subject"] != "Letters still pending virus check" {
		t.Fatalf("subject=%v", ticket["subject"])
	}
}

func TestSendTicketDisabledLogsError(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	client := NewHTTPClient(Params{
		Cfg: config.Config{Alerts: config.AlertsConfig{Enabled: false}},
		Log: zap.New(core),
	})

	err := client.SendTicket(context.Background(), Ticket{Subject: "missing ack files"})
	if err != nil {
		t.Fatalf("send ticket: %v", err)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected 1 error log, got %d", logs.Len())
	}
}
