package validate

import "log/slog"

// FilterValidSigs returns the documents whose signature is valid.
//
// When expectedField is not empty the document must also have that key. Besides the declared
// fields, the keys of the parsed signature count: "Title" (when the document has one),
// "signature_address", "signature" and "valid".
func (v *Validator) FilterValidSigs(docs []string, expectedField string) []string {
	valid := make([]string, 0, len(docs))
	fails := 0
	for _, doc := range docs {
		if v.accept(v.VerifySig(doc), expectedField) {
			valid = append(valid, doc)
		} else {
			fails++
		}
	}
	v.logger.Info("filtered signed documents", slog.Int("valid", len(valid)), slog.Int("fails", fails))
	return valid
}

// FilterAndParseValidSigs is FilterValidSigs returning the parsed documents.
func (v *Validator) FilterAndParseValidSigs(docs []string, expectedField string) []Result {
	valid := make([]Result, 0, len(docs))
	fails := 0
	for _, doc := range docs {
		r := v.VerifySig(doc)
		if v.accept(r, expectedField) {
			valid = append(valid, r)
		} else {
			fails++
		}
	}
	v.logger.Info("parsed signed documents", slog.Int("valid", len(valid)), slog.Int("fails", fails))
	return valid
}

func (v *Validator) accept(r Result, expectedField string) bool {
	if !r.Valid {
		return false
	}
	if expectedField == "" {
		return true
	}
	switch expectedField {
	case keySignatureAddress, keySignature, keyValid:
		return true
	case keyTitle:
		if r.Title != "" {
			return true
		}
	}
	_, ok := r.Field(expectedField)
	return ok
}

// keys of a parsed signature that are not declared fields
const (
	keyTitle            = "Title"
	keySignatureAddress = "signature_address"
	keySignature        = "signature"
	keyValid            = "valid"
)
