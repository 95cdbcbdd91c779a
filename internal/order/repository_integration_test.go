//go:build integration

package order

import (
	"context"
	"errors"
	"testing"

	"github.com/rein-network/rein-node/internal/database"
	"github.com/rein-network/rein-node/internal/database/dbtest"
)

func TestPostgresRepository(t *testing.T) {
	ctx := context.Background()
	pool := dbtest.NewPool(t)
	repo := NewPostgresRepository(pool, database.New(pool), false)

	if _, err := repo.GetByJobID(ctx, "job-1"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}

	parties := Parties{JobCreatorMaddr: "creator", MediatorMaddr: "mediator"}
	steps := []struct {
		docType  DocType
		identity string
	}{
		{JobPosting, "creator"},
		{Bid, "worker"},
		{Offer, "creator"},
	}

	var orderID string
	for _, step := range steps {
		o, d, err := repo.AddDocument(ctx, "job-1", parties, NewDocument{
			DocType:    step.docType,
			Contents:   "signed " + string(step.docType),
			SigAddress: step.identity + "-address",
			Identity:   step.identity,
		})
		if err != nil {
			t.Fatalf("AddDocument(%s): %v", step.docType, err)
		}
		if orderID == "" {
			orderID = o.ID.String()
		} else if o.ID.String() != orderID {
			t.Errorf("document %s attached to a second order %s", step.docType, o.ID)
		}
		if d.SourceURL != SourceLocal {
			t.Errorf("got source %q, want %q", d.SourceURL, SourceLocal)
		}
	}

	o, err := repo.GetByJobID(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetByJobID: %v", err)
	}
	if o.JobCreatorMaddr != "creator" || o.MediatorMaddr != "mediator" || o.WorkerMaddr != "" {
		t.Errorf("unexpected parties %+v", o)
	}
	if o.PostingDocID == nil {
		t.Error("expected the job posting to be recorded on the order")
	}

	docs, err := repo.Documents(ctx, o.ID)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != len(steps) {
		t.Fatalf("got %d documents, want %d", len(docs), len(steps))
	}
	for i, d := range docs {
		if d.DocType != steps[i].docType {
			t.Errorf("document %d: got %s, want %s", i, d.DocType, steps[i].docType)
		}
	}
	if got := DefaultFlow.State(docs); got != Offer {
		t.Errorf("got state %s, want %s", got, Offer)
	}

	users, err := repo.UserOrders(ctx, "worker")
	if err != nil {
		t.Fatalf("UserOrders: %v", err)
	}
	if len(users) != 1 || users[0].ID != o.ID {
		t.Errorf("unexpected user orders %+v", users)
	}

	// testnet orders are kept apart
	testnetRepo := NewPostgresRepository(pool, database.New(pool), true)
	if _, err := testnetRepo.GetByJobID(ctx, "job-1"); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("expected the mainnet order to be invisible on testnet, got %v", err)
	}
}
