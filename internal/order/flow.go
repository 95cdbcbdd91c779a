// Package order reconstructs the lifecycle stage of a job order from its signed documents.
//
// The stage is never stored: it is derived from the document set each time with Flow.State.
package order

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// DocType is the type of a signed document. The order lifecycle stages are the DocTypes that
// appear in a Flow.
type DocType string

const (
	JobPosting     DocType = "job_posting"
	Bid            DocType = "bid"
	Offer          DocType = "offer"
	Delivery       DocType = "delivery"
	Cancel         DocType = "cancel"
	CreatorDispute DocType = "creatordispute"
	WorkerDispute  DocType = "workerdispute"
	Accept         DocType = "accept"
	AcceptCancel   DocType = "acceptcancel"
	Resolve        DocType = "resolve"

	// Complete is a terminal target; no document has this type
	Complete DocType = "complete"

	// not part of the order flow
	Enrollment DocType = "enrollment"
	Review     DocType = "review"
	Audit      DocType = "audit"
)

var knownDocTypes = []DocType{
	JobPosting, Bid, Offer, Delivery, Cancel, CreatorDispute, WorkerDispute,
	Accept, AcceptCancel, Resolve, Enrollment, Review, Audit,
}

// FieldJobID is the field of an order document that names its job.
const FieldJobID = "Job ID"

// IsOrderDocument reports whether documents of type d belong to a job order.
// Enrollments, reviews and audits stand alone.
func (d DocType) IsOrderDocument() bool {
	switch d {
	case Enrollment, Review, Audit, Complete:
		return false
	}
	return slices.Contains(knownDocTypes, d)
}

// ParseDocType returns the DocType named by s.
func ParseDocType(s string) (DocType, error) {
	d := DocType(s)
	if !slices.Contains(knownDocTypes, d) {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return d, nil
}

// Transition lists the states that may precede and follow a state.
type Transition struct {
	Pre  []DocType
	Next []DocType
}

var ErrInvalidFlow = errors.New("invalid order flow")

// Flow is a validated transition graph. It is immutable and safe for concurrent use.
type Flow struct {
	transitions map[DocType]Transition
}

var defaultTransitions = map[DocType]Transition{
	JobPosting:     {Pre: nil, Next: []DocType{Bid}},
	Bid:            {Pre: []DocType{JobPosting}, Next: []DocType{Offer}},
	Offer:          {Pre: []DocType{Bid}, Next: []DocType{Delivery, CreatorDispute, WorkerDispute}},
	Delivery:       {Pre: []DocType{Offer}, Next: []DocType{Accept, CreatorDispute, WorkerDispute}},
	Cancel:         {Pre: []DocType{JobPosting, Bid, Offer, Delivery}, Next: []DocType{WorkerDispute, AcceptCancel}},
	CreatorDispute: {Pre: []DocType{Offer, Delivery}, Next: []DocType{Resolve, WorkerDispute}},
	WorkerDispute:  {Pre: []DocType{Offer, Delivery, Accept}, Next: []DocType{Resolve, CreatorDispute}},
	Accept:         {Pre: []DocType{Delivery}, Next: []DocType{WorkerDispute, Complete}},
	AcceptCancel:   {Pre: []DocType{Cancel}, Next: []DocType{Complete}},
	Resolve:        {Pre: []DocType{CreatorDispute, WorkerDispute}, Next: []DocType{Complete}},
}

// DefaultFlow is the marketplace order flow.
var DefaultFlow = mustNewFlow(defaultTransitions)

func mustNewFlow(transitions map[DocType]Transition) *Flow {
	f, err := NewFlow(transitions)
	if err != nil {
		panic(err)
	}
	return f
}

// NewFlow validates transitions and returns the Flow.
//
// JobPosting must be the only state without predecessors, every state referenced in a Pre or
// Next list must have its own entry (Complete excepted, which may only appear in Next lists),
// and every state must be connected to JobPosting: reachable through Next edges or declaring a
// connected state in Pre.
func NewFlow(transitions map[DocType]Transition) (*Flow, error) {
	start, ok := transitions[JobPosting]
	if !ok {
		return nil, fmt.Errorf("%w: no %s state", ErrInvalidFlow, JobPosting)
	}
	if len(start.Pre) != 0 {
		return nil, fmt.Errorf("%w: %s must not have predecessors", ErrInvalidFlow, JobPosting)
	}
	if _, ok := transitions[Complete]; ok {
		return nil, fmt.Errorf("%w: %s is a terminal target and cannot have transitions", ErrInvalidFlow, Complete)
	}

	for state, t := range transitions {
		if state != JobPosting && len(t.Pre) == 0 {
			return nil, fmt.Errorf("%w: %s has no predecessors", ErrInvalidFlow, state)
		}
		for _, p := range t.Pre {
			if _, ok := transitions[p]; !ok {
				return nil, fmt.Errorf("%w: %s lists unknown predecessor %s", ErrInvalidFlow, state, p)
			}
		}
		for _, n := range t.Next {
			if _, ok := transitions[n]; !ok && n != Complete {
				return nil, fmt.Errorf("%w: %s lists unknown successor %s", ErrInvalidFlow, state, n)
			}
		}
	}

	connected := connectedStates(transitions)
	for state := range transitions {
		if !connected[state] {
			return nil, fmt.Errorf("%w: %s is not connected to %s", ErrInvalidFlow, state, JobPosting)
		}
	}

	copied := make(map[DocType]Transition, len(transitions))
	for state, t := range transitions {
		copied[state] = Transition{Pre: slices.Clone(t.Pre), Next: slices.Clone(t.Next)}
	}
	return &Flow{transitions: copied}, nil
}

func connectedStates(transitions map[DocType]Transition) map[DocType]bool {
	connected := map[DocType]bool{JobPosting: true}
	for changed := true; changed; {
		changed = false
		for state, t := range transitions {
			if !connected[state] {
				continue
			}
			for _, n := range t.Next {
				if !connected[n] {
					connected[n] = true
					changed = true
				}
			}
		}
		for state, t := range transitions {
			if connected[state] {
				continue
			}
			if slices.ContainsFunc(t.Pre, func(p DocType) bool { return connected[p] }) {
				connected[state] = true
				changed = true
			}
		}
	}
	return connected
}

// Next returns the states that can follow state.
func (f *Flow) Next(state DocType) []DocType {
	return slices.Clone(f.transitions[state].Next)
}

func (f *Flow) allows(from, to DocType) bool {
	return slices.Contains(f.transitions[from].Next, to)
}

// State returns the lifecycle stage represented by docs.
//
// Starting at JobPosting, the documents are scanned in ascending ID order and the stage moves to
// a document's type whenever that type can follow the current stage. The stage can move several
// times within a pass, so when two documents both qualify the later one in scan order wins.
// Passes repeat until one makes no move.
//
// Some document sets never settle (a creator dispute and a worker dispute both filed after an
// accept move the stage back and forth on every pass). The stage reached at the end of each pass
// only depends on the stage at its start, so a pass ending at an already visited stage means the
// scan repeats forever; State returns that stage.
func (f *Flow) State(docs []Document) DocType {
	sorted := slices.Clone(docs)
	slices.SortStableFunc(sorted, func(a, b Document) int { return cmp.Compare(a.ID, b.ID) })

	current := JobPosting
	visited := map[DocType]bool{current: true}
	for {
		moved := false
		for _, doc := range sorted {
			if f.allows(current, doc.DocType) {
				current = doc.DocType
				moved = true
			}
		}
		if !moved || visited[current] {
			return current
		}
		visited[current] = true
	}
}

var pastTense = map[DocType]string{
	JobPosting:     "posted",
	Bid:            "bid(s) submitted",
	Offer:          "job awarded",
	Cancel:         "cancel proposed",
	Delivery:       "deliverables submitted",
	CreatorDispute: "disputed by job creator",
	WorkerDispute:  "disputed by worker",
	Accept:         "complete, work accepted",
	AcceptCancel:   "canceled",
	Resolve:        "complete, dispute resolved",
}

// PastTense returns the display label of a lifecycle stage.
func PastTense(state DocType) (string, bool) {
	label, ok := pastTense[state]
	return label, ok
}
