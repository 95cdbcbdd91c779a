package order

import (
	"time"

	"github.com/google/uuid"

	"github.com/rein-network/rein-node/internal/database"
)

// SourceLocal marks documents created on this node.
const SourceLocal = "local"

// Document is a signed document attached to an order.
type Document struct {
	// ID increases with creation order and is the scan order of Flow.State
	ID         int64      `json:"id"`
	DocType    DocType    `json:"docType"`
	Contents   string     `json:"contents"`
	SigAddress string     `json:"sigAddress"`
	OrderID    *uuid.UUID `json:"orderId,omitempty"`

	// SourceURL is SourceLocal or the server the document was fetched from
	SourceURL string `json:"sourceUrl"`

	// Identity is the master address of the user that owns the document
	Identity  string    `json:"identity,omitempty"`
	Testnet   bool      `json:"testnet"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order is a job order. Its lifecycle stage is derived from its documents, see Flow.State.
type Order struct {
	ID              uuid.UUID `json:"id"`
	JobID           string    `json:"jobId"`
	Testnet         bool      `json:"testnet"`
	JobCreatorMaddr string    `json:"jobCreatorMaddr,omitempty"`
	MediatorMaddr   string    `json:"mediatorMaddr,omitempty"`
	WorkerMaddr     string    `json:"workerMaddr,omitempty"`
	PostingDocID    *int64    `json:"postingDocId,omitempty"`
	OpenForBid      *bool     `json:"openForBid,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

func documentFromRow(row database.Document) Document {
	return Document{
		ID:         row.ID,
		DocType:    DocType(row.DocType),
		Contents:   row.Contents,
		SigAddress: row.SigAddress,
		OrderID:    row.OrderID,
		SourceURL:  row.SourceUrl,
		Identity:   deref(row.Identity),
		Testnet:    row.Testnet,
		CreatedAt:  row.CreatedAt,
	}
}

func orderFromRow(row database.Order) Order {
	return Order{
		ID:              row.ID,
		JobID:           row.JobID,
		Testnet:         row.Testnet,
		JobCreatorMaddr: deref(row.JobCreatorMaddr),
		MediatorMaddr:   deref(row.MediatorMaddr),
		WorkerMaddr:     deref(row.WorkerMaddr),
		PostingDocID:    row.PostingDocID,
		OpenForBid:      row.OpenForBid,
		CreatedAt:       row.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
