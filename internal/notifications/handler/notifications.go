package handler

import (
	"net/http"
	"strconv"
	"time"

	"salonbook/internal/notifications"
	apperrors "salonbook/pkg/errors"
	httputil "salonbook/pkg/http"
	"salonbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type PollResponse struct {
	Notifications []notifications.Notification `json:"notifications"`
	LastSeq       uint64                       `json:"last_seq"`
}

// NotificationHandler serves appointment notifications by long polling.
type NotificationHandler struct {
	broker  *notifications.Broker
	maxWait time.Duration
	log     *logger.Logger
}

func NewNotificationHandler(broker *notifications.Broker, maxWait time.Duration, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		broker:  broker,
		maxWait: maxWait,
		log:     log,
	}
}

// Poll returns notifications newer than ?after. With ?wait it blocks until one
// arrives, the wait elapses or the client goes away.
func (h *NotificationHandler) Poll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()
	filter := notifications.Filter{
		BranchID:  query.Get("branch_id"),
		StylistID: query.Get("stylist_id"),
		ClientID:  query.Get("client_id"),
	}

	var after uint64
	if s := query.Get("after"); s != "" {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			h.writeError(w, apperrors.InvalidInput("invalid after parameter: "+s))
			return
		}
		after = v
	}

	var wait time.Duration
	if s := query.Get("wait"); s != "" {
		v, err := time.ParseDuration(s)
		if err != nil || v < 0 {
			h.writeError(w, apperrors.InvalidInput("invalid wait parameter: "+s))
			return
		}
		wait = min(v, h.maxWait)
	}

	// Subscribe before reading the backlog so nothing published in between is lost.
	sub := h.broker.Subscribe(filter)
	defer h.broker.Unsubscribe(sub)

	resp := PollResponse{Notifications: h.broker.Since(after, filter), LastSeq: after}
	if len(resp.Notifications) == 0 && wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()

	waitLoop:
		for {
			select {
			case n, ok := <-sub.C:
				if !ok {
					break waitLoop
				}
				if n.Seq > after {
					resp.Notifications = append(resp.Notifications, n)
					break waitLoop
				}
			case <-timer.C:
				break waitLoop
			case <-r.Context().Done():
				return
			}
		}
	}

	for _, n := range resp.Notifications {
		resp.LastSeq = max(resp.LastSeq, n.Seq)
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "Poll", "operation", "WriteSuccess", "error", err)
	}
}

func (h *NotificationHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Poll", "operation", "WriteError", "error", writeErr)
	}
}

func (h *NotificationHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/notifications", h.Poll)
}
