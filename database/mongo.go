package database

import (
	"context"
	"fmt"
	"time"

	"github.com/globalsign/mgo"
	log "github.com/sirupsen/logrus"

	"warden/events"
)

const (
	dialTimeout  = 10 * time.Second
	pingInterval = 15 * time.Second
)

// Client owns the MongoDB session and the connectivity state derived from it.
//
// mgo exposes no connection lifecycle callbacks, so availability is tracked from
// the dial outcome, from the outcome of every store operation, and from a
// supervisor ping loop whose only job is to notice a recovered server while no
// traffic is reaching the store.
type Client struct {
	session  *mgo.Session
	database string
	avail    *Availability
}

// Connect makes a single dial attempt with a bounded timeout. Irrecoverable errors
// (bad URL, bad credentials, no reachable server) are returned to the caller, which
// decides whether to degrade to snapshot-only mode.
func Connect(url, database string, bus *events.Bus) (*Client, error) {
	avail := NewAvailability(bus)

	session, err := mgo.DialWithTimeout(url, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to dial mongodb: %w", err)
	}
	session.SetMode(mgo.Primary, true)
	session.SetSafe(&mgo.Safe{})

	client := &Client{
		session:  session,
		database: database,
		avail:    avail,
	}
	avail.set(true, "connected")

	return client, nil
}

// Availability returns the client's connectivity state object.
func (c *Client) Availability() *Availability {
	return c.avail
}

// Collection returns a handle to a collection in the configured database.
func (c *Client) Collection(name string) *mgo.Collection {
	return c.session.DB(c.database).C(name)
}

// OperationSucceeded records a successful round trip to the server.
func (c *Client) OperationSucceeded() {
	c.avail.set(true, "operation succeeded")
}

// OperationFailed records a failed round trip. Network-level failures mark the
// store unavailable and refresh the session so the next attempt can reconnect;
// ErrNotFound and other logical outcomes do not affect availability.
func (c *Client) OperationFailed(err error) {
	if err == nil || err == mgo.ErrNotFound {
		return
	}
	c.session.Refresh()
	c.avail.set(false, err.Error())
}

// Supervise pings the server periodically and updates availability on transitions.
// It blocks until ctx is cancelled; run it in its own goroutine.
func (c *Client) Supervise(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.session.Ping(); err != nil {
				log.WithError(err).Debug("Document store ping failed")
				c.session.Refresh()
				c.avail.set(false, "ping failed")
				continue
			}
			c.avail.set(true, "ping succeeded")
		}
	}
}

// Close shuts down the underlying session.
func (c *Client) Close() {
	c.session.Close()
	c.avail.set(false, "closed")
}
