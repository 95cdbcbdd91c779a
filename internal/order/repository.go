package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rein-network/rein-node/internal/database"
)

var ErrOrderNotFound = errors.New("order not found")

// NewDocument is a verified document to be attached to an order.
type NewDocument struct {
	DocType    DocType
	Contents   string
	SigAddress string
	SourceURL  string
	Identity   string
}

// Parties are the counterpart addresses recorded when an order is first created.
type Parties struct {
	JobCreatorMaddr string
	MediatorMaddr   string
	WorkerMaddr     string
}

// Repository stores orders and their documents for one network.
type Repository interface {
	// GetByJobID returns ErrOrderNotFound if there is no order for the job
	GetByJobID(ctx context.Context, jobID string) (Order, error)

	// Documents returns the documents of an order in ascending id order
	Documents(ctx context.Context, orderID uuid.UUID) ([]Document, error)

	// UserOrders returns the orders the user has documents in, most recent document first
	UserOrders(ctx context.Context, identity string) ([]Order, error)

	// AddDocument attaches doc to the order for jobID, creating the order if needed
	AddDocument(ctx context.Context, jobID string, parties Parties, doc NewDocument) (Order, Document, error)
}

// PostgresRepository is the Repository backed by the node database.
type PostgresRepository struct {
	pool    *pgxpool.Pool
	queries *database.Queries
	testnet bool
}

func NewPostgresRepository(pool *pgxpool.Pool, queries *database.Queries, testnet bool) *PostgresRepository {
	return &PostgresRepository{pool: pool, queries: queries, testnet: testnet}
}

func (r *PostgresRepository) GetByJobID(ctx context.Context, jobID string) (Order, error) {
	row, err := r.queries.GetOrderByJobID(ctx, database.GetOrderByJobIDParams{
		JobID:   jobID,
		Testnet: r.testnet,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrOrderNotFound
		}
		return Order{}, fmt.Errorf("failed to get order %s: %w", jobID, err)
	}
	return orderFromRow(row), nil
}

func (r *PostgresRepository) Documents(ctx context.Context, orderID uuid.UUID) ([]Document, error) {
	rows, err := r.queries.GetOrderDocuments(ctx, database.GetOrderDocumentsParams{
		OrderID: &orderID,
		Testnet: r.testnet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get documents for order %s: %w", orderID, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, documentFromRow(row))
	}
	return docs, nil
}

func (r *PostgresRepository) UserOrders(ctx context.Context, identity string) ([]Order, error) {
	rows, err := r.queries.GetUserOrders(ctx, database.GetUserOrdersParams{
		Identity: &identity,
		Testnet:  r.testnet,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for %s: %w", identity, err)
	}

	orders := make([]Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, orderFromRow(row))
	}
	return orders, nil
}

func (r *PostgresRepository) AddDocument(ctx context.Context, jobID string, parties Parties, doc NewDocument) (Order, Document, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, Document{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// no-op after commit
		_ = tx.Rollback(ctx)
	}()

	txQueries := r.queries.WithTx(tx)

	orderRow, err := txQueries.CreateOrderIfNew(ctx, database.CreateOrderIfNewParams{
		JobID:           jobID,
		Testnet:         r.testnet,
		JobCreatorMaddr: optional(parties.JobCreatorMaddr),
		MediatorMaddr:   optional(parties.MediatorMaddr),
		WorkerMaddr:     optional(parties.WorkerMaddr),
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return Order{}, Document{}, fmt.Errorf("failed to create order %s: %w", jobID, err)
		}
		// order already exists
		orderRow, err = txQueries.GetOrderByJobID(ctx, database.GetOrderByJobIDParams{
			JobID:   jobID,
			Testnet: r.testnet,
		})
		if err != nil {
			return Order{}, Document{}, fmt.Errorf("failed to get order %s: %w", jobID, err)
		}
	}

	sourceURL := doc.SourceURL
	if sourceURL == "" {
		sourceURL = SourceLocal
	}
	docRow, err := txQueries.CreateDocument(ctx, database.CreateDocumentParams{
		DocType:    string(doc.DocType),
		Contents:   doc.Contents,
		SigAddress: doc.SigAddress,
		OrderID:    &orderRow.ID,
		SourceUrl:  sourceURL,
		Identity:   optional(doc.Identity),
		Testnet:    r.testnet,
	})
	if err != nil {
		return Order{}, Document{}, fmt.Errorf("failed to store document: %w", err)
	}

	if doc.DocType == JobPosting && orderRow.PostingDocID == nil {
		err := txQueries.SetOrderPostingDocument(ctx, database.SetOrderPostingDocumentParams{
			ID:           orderRow.ID,
			PostingDocID: &docRow.ID,
		})
		if err != nil {
			return Order{}, Document{}, fmt.Errorf("failed to link posting document: %w", err)
		}
		orderRow.PostingDocID = &docRow.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, Document{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return orderFromRow(orderRow), documentFromRow(docRow), nil
}
