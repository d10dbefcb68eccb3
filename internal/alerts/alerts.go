// Package alerts raises operational support tickets. When alerting is
// disabled the same conditions are logged at error level instead.
package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/govnotify/letterpipe/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Ticket is one operational alert.
type Ticket struct {
	Subject string
	Message string
	// Tags help route the ticket; optional.
	Tags []string
}

type TicketClient interface {
	SendTicket(ctx context.Context, ticket Ticket) error
}

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

// HTTPClient posts tickets to the support system's ticket API. With
// alerting disabled it degrades to error-level logging, so the signal is
// never silently dropped.
type HTTPClient struct {
	cfg  config.AlertsConfig
	http *http.Client
	log  *zap.Logger
}

func NewHTTPClient(p Params) *HTTPClient {
	return &HTTPClient{
		cfg:  p.Cfg.Alerts,
		http: &http.Client{Timeout: 15 * time.Second},
		log:  p.Log.Named("alerts"),
	}
}

func (c *HTTPClient) SendTicket(ctx context.Context, ticket Ticket) error {
	if !c.cfg.Enabled || c.cfg.TicketURL == "" {
		c.log.Error("operational alert (ticketing disabled)",
			zap.String("subject", ticket.Subject),
			zap.String("message", ticket.Message),
			zap.Strings("tags", ticket.Tags),
		)
		return nil
	}

	payload := map[string]any{
		"ticket": map[string]any{
			"subject": ticket.Subject,
			"comment": map[string]string{"body": ticket.Message},
			"tags":    ticket.Tags,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TicketURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.TicketToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.TicketToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send ticket: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("send ticket: status %d", resp.StatusCode)
	}
	c.log.Info("support ticket raised", zap.String("subject", ticket.Subject))
	return nil
}

var Module = fx.Module("alerts",
	fx.Provide(NewHTTPClient),
	fx.Provide(func(c *HTTPClient) TicketClient { return c }),
)
