//go:build integration

package testutil

import (
	"net/http"
	"testing"

	"salonbook/pkg/model"
)

// Catalog is the seeded salon: one branch, two services and a stylist who
// performs both.
type Catalog struct {
	Branch   model.Branch
	Cut      model.SalonService
	Color    model.SalonService
	Stylist  model.Stylist
	Stylist2 model.Stylist
}

func SeedCatalog(t *testing.T, c *Client) *Catalog {
	t.Helper()
	cat := &Catalog{}

	resp := c.POST(t, "/api/v1/branches", model.Branch{
		Name:     "Center",
		Address:  "1 Herzl St",
		City:     "Tel Aviv",
		Hours:    "09:00-19:00",
		IsActive: true,
	})
	AssertStatusCode(t, resp, http.StatusCreated)
	resp.Data(t, &cat.Branch)

	cat.Cut = createService(t, c, model.SalonService{
		BranchID: cat.Branch.ID, Name: "Haircut", Price: 300, Duration: 20, Category: "hair",
	})
	cat.Color = createService(t, c, model.SalonService{
		BranchID: cat.Branch.ID, Name: "Color", Price: 200, Duration: 10, Category: "hair",
	})

	cat.Stylist = createStylist(t, c, model.Stylist{
		BranchID:    cat.Branch.ID,
		Name:        "Dana Levi",
		FirstName:   "Dana",
		LastName:    "Levi",
		Rating:      4.8,
		IsAvailable: true,
		ServiceIDs:  []string{cat.Cut.ID, cat.Color.ID},
	})
	cat.Stylist2 = createStylist(t, c, model.Stylist{
		BranchID:    cat.Branch.ID,
		Name:        "Avi Cohen",
		FirstName:   "Avi",
		LastName:    "Cohen",
		Rating:      4.2,
		IsAvailable: true,
		ServiceIDs:  []string{cat.Cut.ID},
	})
	return cat
}

func createService(t *testing.T, c *Client, svc model.SalonService) model.SalonService {
	t.Helper()
	resp := c.POST(t, "/api/v1/services", svc)
	AssertStatusCode(t, resp, http.StatusCreated)
	var created model.SalonService
	resp.Data(t, &created)
	return created
}

func createStylist(t *testing.T, c *Client, st model.Stylist) model.Stylist {
	t.Helper()
	resp := c.POST(t, "/api/v1/stylists", st)
	AssertStatusCode(t, resp, http.StatusCreated)
	var created model.Stylist
	resp.Data(t, &created)
	return created
}
