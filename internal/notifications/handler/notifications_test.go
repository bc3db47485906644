package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salonbook/internal/notifications"
	"salonbook/pkg/config"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

func setup(maxWait time.Duration) (*notifications.Broker, *httprouter.Router) {
	broker := notifications.NewBroker(4, 16, logger.Discard())
	router := httprouter.New()
	NewNotificationHandler(broker, maxWait, logger.Discard()).RegisterRoutes(router)
	return broker, router
}

func publish(b *notifications.Broker, id, branch string) {
	b.Publish(notifications.Notification{
		EventType: config.EventAppointmentCreated,
		Event:     model.AppointmentEvent{AppointmentID: id, BranchID: branch, Status: config.Pending},
	})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) PollResponse {
	t.Helper()
	var body struct {
		Data PollResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	return body.Data
}

func TestPoll_ReturnsBacklog(t *testing.T) {
	broker, router := setup(time.Second)
	publish(broker, "a1", "b1")
	publish(broker, "a2", "b2")
	publish(broker, "a3", "b1")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications?branch_id=b1&after=1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if len(resp.Notifications) != 1 || resp.Notifications[0].Event.AppointmentID != "a3" {
		t.Fatalf("notifications = %+v", resp.Notifications)
	}
	if resp.LastSeq != 3 {
		t.Errorf("last_seq = %d, want 3", resp.LastSeq)
	}
}

func TestPoll_WaitsForNextNotification(t *testing.T) {
	broker, router := setup(5 * time.Second)

	go func() {
		time.Sleep(50 * time.Millisecond)
		publish(broker, "a1", "b1")
	}()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications?wait=2s", nil))

	resp := decode(t, rec)
	if len(resp.Notifications) != 1 || resp.LastSeq != 1 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestPoll_TimesOutEmpty(t *testing.T) {
	_, router := setup(50 * time.Millisecond)

	start := time.Now()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications?after=7&wait=1h", nil))

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("wait was not capped: %v", elapsed)
	}
	resp := decode(t, rec)
	if len(resp.Notifications) != 0 || resp.LastSeq != 7 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestPoll_BadParameters(t *testing.T) {
	_, router := setup(time.Second)

	for _, q := range []string{"?after=-1", "?after=x", "?wait=soon", "?wait=-1s"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notifications"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", q, rec.Code)
		}
	}
}
