package services

import (
	"bytes"
	"context"
	"testing"
	"time"

	"carpool/internal/domain"
	"carpool/internal/domain/models"
)

func TestDocsServiceRideTicketFromLoader(t *testing.T) {
	loader := func(_ context.Context, id int64) (ticketData, error) {
		return ticketData{
			RequestID:  id,
			Status:     domain.StatusApproved,
			Rider:      models.User{ID: 2, FirstName: "Ravi", LastName: "K"},
			Driver:     models.User{ID: 1, FirstName: "Asha", LastName: "Rao"},
			Share:      models.Share{ID: 10, Origin: "Pune", Destination: "Mumbai", DepartureTime: time.Now(), Price: 450},
			ApprovedAt: time.Now(),
		}, nil
	}
	svc := DocsService{Loader: loader}

	for _, who := range []int64{1, 2} {
		pdf, filename, err := svc.RideTicket(context.Background(), domain.Identity{UserID: who}, 7)
		if err != nil {
			t.Fatalf("RideTicket returned error: %v", err)
		}
		if !bytes.HasPrefix(pdf, []byte("%PDF")) {
			t.Fatalf("RideTicket did not return a PDF")
		}
		if filename != "TICKET_7_Pune_Mumbai.pdf" {
			t.Fatalf("unexpected filename %q", filename)
		}
	}

	if _, _, err := svc.RideTicket(context.Background(), domain.Identity{UserID: 3}, 7); !domain.IsForbidden(err) {
		t.Fatalf("expected forbidden for a stranger, got %v", err)
	}
}

func TestDocsServiceRideTicketRequiresApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	driver := f.register(t, "Asha", "asha@x.io")
	rider := f.register(t, "Ravi", "ravi@x.io")
	sh := f.share(t, driver, "Pune", "Mumbai", "2025-04-20", "09:00", 1)
	req, err := f.shares.RequestRide(ctx, rider, float64(sh.ID), strPtr("two bags"))
	if err != nil {
		t.Fatalf("request ride: %v", err)
	}

	if _, _, err := f.docs.RideTicket(ctx, rider, req.ID); !domain.IsConflict(err) {
		t.Fatalf("expected conflict for pending request, got %v", err)
	}
	if _, _, err := f.docs.RideTicket(ctx, rider, 999); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if _, err := f.shares.UpdateRequestStatus(ctx, driver, req.ID, "APPROVED"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	pdf, _, err := f.docs.RideTicket(ctx, rider, req.ID)
	if err != nil {
		t.Fatalf("RideTicket: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatalf("empty ticket")
	}
}
