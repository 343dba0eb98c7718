package event

import (
	"context"
	"testing"
)

func TestRSVPUpsert(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRSVPRepository()

	if err := repo.Upsert(ctx, &RSVP{UserID: "u1", EventID: "e1", Status: "MAYBE"}); err != ErrInvalidRSVPStatus {
		t.Fatalf("error = %v, want ErrInvalidRSVPStatus", err)
	}

	if err := repo.Upsert(ctx, &RSVP{UserID: "u1", EventID: "e1", Status: RSVPInterested}); err != nil {
		t.Fatal(err)
	}

	stored, err := repo.GetByEventAndUser(ctx, "e1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != RSVPInterested {
		t.Errorf("Status = %q, want INTERESTED", stored.Status)
	}
	created := stored.CreatedAt

	// Upsert with the same key updates the status, keeps CreatedAt.
	if err := repo.Upsert(ctx, &RSVP{UserID: "u1", EventID: "e1", Status: RSVPGoing}); err != nil {
		t.Fatal(err)
	}
	stored, err = repo.GetByEventAndUser(ctx, "e1", "u1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != RSVPGoing {
		t.Errorf("Status = %q, want GOING after upsert", stored.Status)
	}
	if !stored.CreatedAt.Equal(created) {
		t.Error("CreatedAt changed on upsert")
	}
}

func TestRSVPGetMissing(t *testing.T) {
	repo := NewInMemoryRSVPRepository()
	if _, err := repo.GetByEventAndUser(context.Background(), "e1", "u1"); err != ErrRSVPNotFound {
		t.Errorf("error = %v, want ErrRSVPNotFound", err)
	}
}

func TestCountGoing(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRSVPRepository()

	seed := []*RSVP{
		{UserID: "u1", EventID: "e1", Status: RSVPGoing},
		{UserID: "u2", EventID: "e1", Status: RSVPGoing},
		{UserID: "u3", EventID: "e1", Status: RSVPInterested},
		{UserID: "u4", EventID: "e1", Status: RSVPNotGoing},
		{UserID: "u1", EventID: "e2", Status: RSVPGoing},
	}
	for _, rsvp := range seed {
		if err := repo.Upsert(ctx, rsvp); err != nil {
			t.Fatal(err)
		}
	}

	count, err := repo.CountGoing(ctx, "e1")
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("CountGoing(e1) = %d, want 2", count)
	}

	// Switching away from GOING lowers the count.
	if err := repo.Upsert(ctx, &RSVP{UserID: "u2", EventID: "e1", Status: RSVPNotGoing}); err != nil {
		t.Fatal(err)
	}
	count, _ = repo.CountGoing(ctx, "e1")
	if count != 1 {
		t.Errorf("CountGoing(e1) = %d after status change, want 1", count)
	}
}

func TestListByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRSVPRepository()

	for _, rsvp := range []*RSVP{
		{UserID: "u1", EventID: "e1", Status: RSVPGoing},
		{UserID: "u1", EventID: "e2", Status: RSVPInterested},
		{UserID: "u2", EventID: "e1", Status: RSVPGoing},
	} {
		if err := repo.Upsert(ctx, rsvp); err != nil {
			t.Fatal(err)
		}
	}

	list, err := repo.ListByUser(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("ListByUser(u1) returned %d RSVPs, want 2", len(list))
	}
}
