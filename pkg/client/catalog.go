package client

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"salonbook/pkg/model"
)

type CatalogClient struct {
	httpClient *HttpClient
}

func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	return &CatalogClient{
		httpClient: NewHttpClient(baseURL, timeout),
	}
}

func (c *CatalogClient) ListBranches(ctx context.Context) ([]model.Branch, error) {
	var branches []model.Branch
	if err := c.getData(ctx, "/api/v1/branches", &branches); err != nil {
		return nil, err
	}
	return branches, nil
}

func (c *CatalogClient) ListServices(ctx context.Context, branchID string) ([]model.SalonService, error) {
	q := url.Values{}
	q.Set("branch_id", branchID)

	var services []model.SalonService
	if err := c.getData(ctx, "/api/v1/services?"+q.Encode(), &services); err != nil {
		return nil, err
	}
	return services, nil
}

func (c *CatalogClient) ListStylists(ctx context.Context, branchID string, availableOnly bool) ([]model.Stylist, error) {
	q := url.Values{}
	q.Set("branch_id", branchID)
	q.Set("available", strconv.FormatBool(availableOnly))

	var stylists []model.Stylist
	if err := c.getData(ctx, "/api/v1/stylists?"+q.Encode(), &stylists); err != nil {
		return nil, err
	}
	return stylists, nil
}

func (c *CatalogClient) GetBranch(ctx context.Context, id string) (*model.Branch, error) {
	var branch model.Branch
	if err := c.getData(ctx, "/api/v1/branches/id/"+url.PathEscape(id), &branch); err != nil {
		return nil, err
	}
	return &branch, nil
}

func (c *CatalogClient) GetService(ctx context.Context, id string) (*model.SalonService, error) {
	var svc model.SalonService
	if err := c.getData(ctx, "/api/v1/services/id/"+url.PathEscape(id), &svc); err != nil {
		return nil, err
	}
	return &svc, nil
}

func (c *CatalogClient) GetStylist(ctx context.Context, id string) (*model.Stylist, error) {
	var stylist model.Stylist
	if err := c.getData(ctx, "/api/v1/stylists/id/"+url.PathEscape(id), &stylist); err != nil {
		return nil, err
	}
	return &stylist, nil
}

func (c *CatalogClient) getData(ctx context.Context, path string, target any) error {
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return err
	}
	if err := resp.AsError(); err != nil {
		return err
	}
	return resp.DecodeData(target)
}
