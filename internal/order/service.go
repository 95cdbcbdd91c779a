package order

import (
	"context"
	"fmt"
)

// Summary describes the current stage of an order.
type Summary struct {
	Order     Order   `json:"order"`
	State     DocType `json:"state"`
	Label     string  `json:"label"`
	Documents int     `json:"documents"`
	Digest    string  `json:"digest"`
}

// Service derives order stages from stored documents.
type Service struct {
	repo Repository
	flow *Flow
}

func NewService(repo Repository, flow *Flow) *Service {
	return &Service{repo: repo, flow: flow}
}

// Summary returns the current stage of the order for jobID.
// ErrOrderNotFound is returned if the job has no order.
func (s *Service) Summary(ctx context.Context, jobID string) (Summary, error) {
	o, err := s.repo.GetByJobID(ctx, jobID)
	if err != nil {
		return Summary{}, err
	}
	docs, err := s.repo.Documents(ctx, o.ID)
	if err != nil {
		return Summary{}, err
	}
	return s.summarize(o, docs)
}

// UserSummaries returns the summaries of the orders a user has documents in, most recent first.
func (s *Service) UserSummaries(ctx context.Context, identity string) ([]Summary, error) {
	orders, err := s.repo.UserOrders(ctx, identity)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(orders))
	for _, o := range orders {
		docs, err := s.repo.Documents(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		summary, err := s.summarize(o, docs)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Attach stores a verified document and returns the updated summary of its order.
func (s *Service) Attach(ctx context.Context, jobID string, parties Parties, doc NewDocument) (Summary, error) {
	o, _, err := s.repo.AddDocument(ctx, jobID, parties, doc)
	if err != nil {
		return Summary{}, err
	}
	docs, err := s.repo.Documents(ctx, o.ID)
	if err != nil {
		return Summary{}, err
	}
	return s.summarize(o, docs)
}

func (s *Service) summarize(o Order, docs []Document) (Summary, error) {
	state := s.flow.State(docs)
	label, _ := PastTense(state)

	digest, err := StateDigest(docs)
	if err != nil {
		return Summary{}, fmt.Errorf("order %s: %w", o.JobID, err)
	}

	return Summary{
		Order:     o,
		State:     state,
		Label:     label,
		Documents: len(docs),
		Digest:    digest,
	}, nil
}
