package validate

import (
	"log/slog"

	"github.com/rein-network/rein-node/internal/armor"
)

// MasterAddressField is the enrollment field that an enrollment must be signed by.
const MasterAddressField = "Master signing address"

// Verifier checks a bitcoin message signature.
type Verifier interface {
	Verify(address, message, signature string) (bool, error)
}

// Result is the outcome of verifying a single signed document.
// When the document could not be parsed only Valid (false) is set.
type Result struct {
	Valid            bool              `json:"valid"`
	Title            string            `json:"title,omitempty"`
	Fields           map[string]string `json:"fields,omitempty"`
	SignatureAddress string            `json:"signatureAddress,omitempty"`
	Signature        string            `json:"signature,omitempty"`
}

// Field returns a declared field of the document.
func (r Result) Field(key string) (string, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// Link is the outcome of verifying one layer of an endorsement.
type Link struct {
	Valid          bool   `json:"valid"`
	SigningAddress string `json:"signingAddress"`

	// Inner is the embedded document, re-armored for the next verifier
	Inner string `json:"inner"`
}

type Validator struct {
	verifier Verifier
	logger   *slog.Logger
}

func NewValidator(verifier Verifier, logger *slog.Logger) *Validator {
	return &Validator{verifier: verifier, logger: logger}
}

// VerifySig parses a signed document and verifies its signature over the stripped payload.
// Documents without signature framing, and verifier errors, produce an invalid result.
func (v *Validator) VerifySig(text string) Result {
	p, ok := armor.ParseSig(text)
	if !ok {
		return Result{}
	}

	valid, err := v.verifier.Verify(p.SignatureAddress, armor.StripArmor(text, false), p.Signature)
	if err != nil {
		v.logger.Debug("signature verification failed",
			slog.String("address", p.SignatureAddress),
			slog.String("error", err.Error()),
		)
		valid = false
	}

	return Result{
		Valid:            valid,
		Title:            p.Title,
		Fields:           p.Fields,
		SignatureAddress: p.SignatureAddress,
		Signature:        p.Signature,
	}
}

// ValidateEnrollment verifies an enrollment. It returns false unless the signature is valid and
// the signing address is the declared master signing address.
func (v *Validator) ValidateEnrollment(text string) (Result, bool) {
	r := v.VerifySig(text)
	if !r.Valid {
		return r, false
	}
	if master, ok := r.Field(MasterAddressField); !ok || master != r.SignatureAddress {
		return r, false
	}
	return r, true
}

// ValidateReview verifies a review and recovers the enrollment embedded in it.
// Every escaped marker in the payload is restored, so Inner can be passed to ValidateEnrollment.
func (v *Validator) ValidateReview(text string) Link {
	r := v.VerifySig(text)
	return Link{
		Valid:          r.Valid,
		SigningAddress: r.SignatureAddress,
		Inner:          armor.RepairDashes(armor.StripArmor(text, false)),
	}
}

// ValidateAudit verifies an audit and recovers the review embedded in it.
// Only the markers of the review are restored; the enrollment inside it stays escaped.
func (v *Validator) ValidateAudit(text string) Link {
	r := v.VerifySig(text)
	return Link{
		Valid:          r.Valid,
		SigningAddress: r.SignatureAddress,
		Inner:          armor.PeelLayer(armor.StripArmor(text, false)),
	}
}
