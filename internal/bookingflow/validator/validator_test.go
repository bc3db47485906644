package validator

import (
	"errors"
	"testing"

	"salonbook/pkg/logger"
	"salonbook/pkg/model"
)

func TestSelectionValidator(t *testing.T) {
	v := NewSelectionValidator(logger.Discard())

	tests := []struct {
		name       string
		req        any
		wantFields []string
	}{
		{
			name: "valid start",
			req:  &model.StartSessionRequest{FirstName: "Noa", Contact: "+972501234567"},
		},
		{
			name:       "start without name and contact",
			req:        &model.StartSessionRequest{},
			wantFields: []string{"first_name", "contact"},
		},
		{
			name:       "empty branch id",
			req:        &model.SetBranchRequest{},
			wantFields: []string{"branch_id"},
		},
		{
			name: "valid date time",
			req:  &model.SetDateTimeRequest{Date: "2025-03-10", Time: "10:30"},
		},
		{
			name:       "bad date and time",
			req:        &model.SetDateTimeRequest{Date: "10-03-2025", Time: "25:00"},
			wantFields: []string{"date", "time"},
		},
		{
			name:       "missing stylist",
			req:        &model.AssignStylistRequest{},
			wantFields: []string{"stylist_id"},
		},
		{
			name:       "notes too long",
			req:        &model.SetNotesRequest{Notes: string(make([]byte, 1001))},
			wantFields: []string{"notes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			details := verrs.Details()
			for _, f := range tt.wantFields {
				if _, ok := details[f]; !ok {
					t.Errorf("expected error on field %q, got %v", f, details)
				}
			}
		})
	}
}
