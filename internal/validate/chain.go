package validate

import "fmt"

// Stage names a layer of an endorsement chain.
type Stage string

const (
	StageAudit      Stage = "audit"
	StageReview     Stage = "review"
	StageEnrollment Stage = "enrollment"
)

// ChainError reports the first layer of a chain that failed verification.
type ChainError struct {
	Stage   Stage
	Address string
}

func (e *ChainError) Error() string {
	if e.Address == "" {
		return fmt.Sprintf("%s signature could not be parsed", e.Stage)
	}
	return fmt.Sprintf("%s signature by %s is not valid", e.Stage, e.Address)
}

// ChainResult is the outcome of verifying an audit, the review inside it and the enrollment
// inside the review.
type ChainResult struct {
	Valid bool `json:"valid"`

	Auditor  string `json:"auditor,omitempty"`
	Reviewer string `json:"reviewer,omitempty"`
	Enrollee string `json:"enrollee,omitempty"`

	// Enrollment is set once the chain has been verified down to the enrollment
	Enrollment *Result `json:"enrollment,omitempty"`

	// Err is the first failure (nil when Valid)
	Err *ChainError `json:"-"`
}

// ValidateChain verifies an audit document down to the enrollment it endorses.
// Verification stops at the first invalid layer.
func (v *Validator) ValidateChain(text string) ChainResult {
	var res ChainResult

	audit := v.ValidateAudit(text)
	res.Auditor = audit.SigningAddress
	if !audit.Valid {
		res.Err = &ChainError{Stage: StageAudit, Address: audit.SigningAddress}
		return res
	}

	review := v.ValidateReview(audit.Inner)
	res.Reviewer = review.SigningAddress
	if !review.Valid {
		res.Err = &ChainError{Stage: StageReview, Address: review.SigningAddress}
		return res
	}

	enrollment, ok := v.ValidateEnrollment(review.Inner)
	res.Enrollee = enrollment.SignatureAddress
	if !ok {
		res.Err = &ChainError{Stage: StageEnrollment, Address: enrollment.SignatureAddress}
		return res
	}

	res.Enrollment = &enrollment
	res.Valid = true
	return res
}
