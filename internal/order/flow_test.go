package order

import (
	"errors"
	"testing"
)

// docs returns documents with ids in argument order
func docs(types ...DocType) []Document {
	ret := make([]Document, 0, len(types))
	for i, t := range types {
		ret = append(ret, Document{ID: int64(i + 1), DocType: t})
	}
	return ret
}

func TestFlowState(t *testing.T) {
	tests := []struct {
		name string
		docs []Document
		want DocType
	}{
		{
			name: "no documents",
			docs: nil,
			want: JobPosting,
		},
		{
			name: "posting only",
			docs: docs(JobPosting),
			want: JobPosting,
		},
		{
			name: "delivery",
			docs: docs(JobPosting, Bid, Offer, Delivery),
			want: Delivery,
		},
		{
			name: "accepted",
			docs: docs(JobPosting, Bid, Offer, Delivery, Accept),
			want: Accept,
		},
		{
			name: "several bids",
			docs: docs(JobPosting, Bid, Bid, Bid, Offer),
			want: Offer,
		},
		{
			name: "unrelated documents are ignored",
			docs: docs(Enrollment, JobPosting, Review, Bid, Audit),
			want: Bid,
		},
		{
			name: "enabling documents later in the scan need more passes",
			docs: docs(Delivery, Offer, Bid),
			want: Delivery,
		},
		{
			name: "dispute after offer",
			docs: docs(JobPosting, Bid, Offer, CreatorDispute),
			want: CreatorDispute,
		},
		{
			name: "resolved dispute",
			docs: docs(JobPosting, Bid, Offer, WorkerDispute, Resolve),
			want: Resolve,
		},
		{
			name: "stage moves on before a later document is tested",
			docs: docs(JobPosting, Bid, Offer, Delivery, WorkerDispute, Accept),
			want: WorkerDispute,
		},
		{
			name: "dispute after accept",
			docs: docs(JobPosting, Bid, Offer, Delivery, Accept, WorkerDispute),
			want: WorkerDispute,
		},
		{
			name: "cancel is not reachable through next transitions",
			docs: docs(JobPosting, Bid, Cancel),
			want: Bid,
		},
		// both disputes after an accept move the stage back and forth on every pass;
		// the dispute filed later wins
		{
			name: "creator dispute filed after worker dispute",
			docs: docs(JobPosting, Bid, Offer, Delivery, Accept, WorkerDispute, CreatorDispute),
			want: CreatorDispute,
		},
		{
			name: "worker dispute filed after creator dispute",
			docs: docs(JobPosting, Bid, Offer, Delivery, Accept, CreatorDispute, WorkerDispute),
			want: WorkerDispute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultFlow.State(tt.docs); got != tt.want {
				t.Errorf("State() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFlowState_OrdersByID(t *testing.T) {
	unordered := []Document{
		{ID: 4, DocType: Delivery},
		{ID: 2, DocType: Bid},
		{ID: 1, DocType: JobPosting},
		{ID: 3, DocType: Offer},
	}

	if got := DefaultFlow.State(unordered); got != Delivery {
		t.Errorf("State() = %s, want %s", got, Delivery)
	}

	// the input is not reordered
	if unordered[0].ID != 4 {
		t.Error("State() modified its input")
	}
}

func TestFlowState_Deterministic(t *testing.T) {
	set := docs(JobPosting, Bid, Offer, Delivery, Accept, CreatorDispute, WorkerDispute, Resolve)
	first := DefaultFlow.State(set)
	for range 20 {
		if got := DefaultFlow.State(set); got != first {
			t.Fatalf("State() = %s, previously %s", got, first)
		}
	}
}

func TestNewFlow(t *testing.T) {
	tests := []struct {
		name        string
		transitions map[DocType]Transition
		wantErr     bool
	}{
		{
			name:        "default flow",
			transitions: defaultTransitions,
		},
		{
			name:        "no job posting",
			transitions: map[DocType]Transition{Bid: {Pre: []DocType{Offer}}},
			wantErr:     true,
		},
		{
			name: "job posting with predecessor",
			transitions: map[DocType]Transition{
				JobPosting: {Pre: []DocType{Bid}, Next: []DocType{Bid}},
				Bid:        {Pre: []DocType{JobPosting}},
			},
			wantErr: true,
		},
		{
			name: "second state without predecessors",
			transitions: map[DocType]Transition{
				JobPosting: {Next: []DocType{Bid}},
				Bid:        {},
			},
			wantErr: true,
		},
		{
			name: "unknown successor",
			transitions: map[DocType]Transition{
				JobPosting: {Next: []DocType{Bid}},
			},
			wantErr: true,
		},
		{
			name: "unknown predecessor",
			transitions: map[DocType]Transition{
				JobPosting: {Next: []DocType{Bid}},
				Bid:        {Pre: []DocType{Offer}},
			},
			wantErr: true,
		},
		{
			name: "complete with transitions",
			transitions: map[DocType]Transition{
				JobPosting: {Next: []DocType{Complete}},
				Complete:   {Pre: []DocType{JobPosting}},
			},
			wantErr: true,
		},
		{
			name: "complete as a target",
			transitions: map[DocType]Transition{
				JobPosting: {Next: []DocType{Complete}},
			},
		},
		{
			name: "disconnected states",
			transitions: map[DocType]Transition{
				JobPosting: {Next: []DocType{Complete}},
				Bid:        {Pre: []DocType{Offer}, Next: []DocType{Offer}},
				Offer:      {Pre: []DocType{Bid}, Next: []DocType{Bid}},
			},
			wantErr: true,
		},
		{
			name: "connected through predecessors only",
			transitions: map[DocType]Transition{
				JobPosting:   {Next: []DocType{Complete}},
				Cancel:       {Pre: []DocType{JobPosting}, Next: []DocType{AcceptCancel}},
				AcceptCancel: {Pre: []DocType{Cancel}, Next: []DocType{Complete}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFlow(tt.transitions)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFlow) {
					t.Errorf("expected ErrInvalidFlow, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestNewFlow_CopiesTransitions(t *testing.T) {
	transitions := map[DocType]Transition{
		JobPosting: {Next: []DocType{Bid}},
		Bid:        {Pre: []DocType{JobPosting}, Next: []DocType{Complete}},
	}
	f, err := NewFlow(transitions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	transitions[JobPosting].Next[0] = Offer
	if got := f.Next(JobPosting); len(got) != 1 || got[0] != Bid {
		t.Errorf("flow changed with its input: %v", got)
	}
}

func TestPastTense(t *testing.T) {
	for state := range defaultTransitions {
		if _, ok := PastTense(state); !ok {
			t.Errorf("no label for %s", state)
		}
	}

	if label, _ := PastTense(Accept); label != "complete, work accepted" {
		t.Errorf("unexpected accept label %q", label)
	}
	if _, ok := PastTense(Complete); ok {
		t.Error("complete has no label")
	}
}

func TestParseDocType(t *testing.T) {
	if d, err := ParseDocType("workerdispute"); err != nil || d != WorkerDispute {
		t.Errorf("ParseDocType(workerdispute) = %s, %v", d, err)
	}
	if _, err := ParseDocType("complete"); err == nil {
		t.Error("complete is not a document type")
	}
	if _, err := ParseDocType("Bid"); err == nil {
		t.Error("document types are case sensitive")
	}
}

func TestIsOrderDocument(t *testing.T) {
	tests := []struct {
		docType DocType
		want    bool
	}{
		{JobPosting, true},
		{Bid, true},
		{Resolve, true},
		{Enrollment, false},
		{Review, false},
		{Audit, false},
		{Complete, false},
		{DocType("invoice"), false},
	}
	for _, tt := range tests {
		t.Run(string(tt.docType), func(t *testing.T) {
			if got := tt.docType.IsOrderDocument(); got != tt.want {
				t.Errorf("IsOrderDocument() = %v, want %v", got, tt.want)
			}
		})
	}
}
