//go:build integration

package testutil

import (
	"os"
	"testing"
	"time"
)

const DefaultHealthCheckTimeout = 60 * time.Second

// TestEnv points at a running salonbook deployment.
type TestEnv struct {
	MongoURI        string
	DatabaseName    string
	CatalogURL      string
	BookingURL      string
	AppointmentsURL string
	NotifierURL     string
}

type Clients struct {
	Catalog      *Client
	Booking      *Client
	Appointments *Client
	Notifier     *Client
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		MongoURI:        getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName:    getEnv("TEST_DB_NAME", DefaultDatabaseName),
		CatalogURL:      getEnv("TEST_CATALOG_URL", "http://localhost:8081"),
		BookingURL:      getEnv("TEST_BOOKING_URL", "http://localhost:8080"),
		AppointmentsURL: getEnv("TEST_APPOINTMENTS_URL", "http://localhost:8082"),
		NotifierURL:     getEnv("TEST_NOTIFIER_URL", "http://localhost:8083"),
	}
}

// Setup empties the domain collections and waits for every service.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *Clients) {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanDomain(t)

	clients := &Clients{
		Catalog:      NewClient(e.CatalogURL),
		Booking:      NewClient(e.BookingURL),
		Appointments: NewClient(e.AppointmentsURL),
		Notifier:     NewClient(e.NotifierURL),
	}
	for _, c := range []*Client{clients.Catalog, clients.Booking, clients.Appointments, clients.Notifier} {
		c.WaitForHealthy(t, DefaultHealthCheckTimeout)
	}
	return mongo, clients
}

func (e *TestEnv) Cleanup(t *testing.T, mongo *MongoHelper) {
	t.Helper()
	if mongo != nil {
		mongo.CleanDomain(t)
		mongo.Close(t)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
