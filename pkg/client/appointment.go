package client

import (
	"context"
	"fmt"
	"time"

	"salonbook/pkg/model"
)

type AppointmentClient struct {
	httpClient *HttpClient
}

func NewAppointmentClient(baseURL string, timeout time.Duration) *AppointmentClient {
	return &AppointmentClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

// CreateAppointment posts the payload and returns the new appointment id.
func (c *AppointmentClient) CreateAppointment(ctx context.Context, payload *model.AppointmentPayload) (string, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/appointments", payload)
	if err != nil {
		return "", err
	}
	if err := resp.AsError(); err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := resp.DecodeData(&created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("appointments service returned an empty id")
	}
	return created.ID, nil
}
