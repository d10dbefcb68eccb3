package alerts

import (
	"context"
	"sync"
)

// MemoryClient records tickets for tests.
type MemoryClient struct {
	mu      sync.Mutex
	tickets []Ticket
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

func (c *MemoryClient) SendTicket(_ context.Context, ticket Ticket) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickets = append(c.tickets, ticket)
	return nil
}

func (c *MemoryClient) Tickets() []Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Ticket, len(c.tickets))
	copy(out, c.tickets)
	return out
}
