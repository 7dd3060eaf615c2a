// Package publish pushes extracted pairing records onto the message bus so
// downstream consumers (bid analysers, notification bots) see new trips as
// documents are imported.
package publish

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"pairing_parser/internal/pairing"
)

// SubjectPrefix is the root of the pairing subject hierarchy. Trips are
// published on "<prefix>.trip.<base>", e.g. "pairings.trip.yyc".
const SubjectPrefix = "pairings"

// Publisher publishes trips to a NATS server.
type Publisher struct {
	nc *nats.Conn
}

// Connect opens a NATS connection with retry-friendly defaults.
func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("pairing_parser"),
		nats.Timeout(10*time.Second),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{nc: nc}, nil
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() {
	_ = p.nc.Drain()
}

// Subject returns the publish subject for one trip.
func Subject(trip *pairing.Trip) string {
	base := strings.ToLower(trip.Base)
	if base == "" {
		base = "unknown"
	}
	return SubjectPrefix + ".trip." + base
}

// PublishTrip publishes one trip as JSON.
func (p *Publisher) PublishTrip(trip *pairing.Trip) error {
	payload, err := json.Marshal(trip)
	if err != nil {
		return fmt.Errorf("marshal trip %s/%s: %w", trip.TripNumber, trip.PairingNumber, err)
	}
	if err := p.nc.Publish(Subject(trip), payload); err != nil {
		return fmt.Errorf("publish trip %s/%s: %w", trip.TripNumber, trip.PairingNumber, err)
	}
	return nil
}

// PublishAll publishes every trip and flushes once at the end.
func (p *Publisher) PublishAll(trips []*pairing.Trip) error {
	for _, trip := range trips {
		if err := p.PublishTrip(trip); err != nil {
			return err
		}
	}
	return p.nc.Flush()
}
