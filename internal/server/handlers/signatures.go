package handlers

// signatures.go implements the signature verification endpoints.
// Verification failures are reported in the response body (valid=false), not as errors.

import (
	"log/slog"
	"net/http"

	"github.com/rein-network/rein-node/internal/api"
	"github.com/rein-network/rein-node/internal/logger"
	"github.com/rein-network/rein-node/internal/validate"
)

// SignatureHandler handles the /v1/signatures endpoints
type SignatureHandler struct {
	validator *validate.Validator
}

func NewSignatureHandler(validator *validate.Validator) *SignatureHandler {
	return &SignatureHandler{validator: validator}
}

// EnrollmentResponse is returned by POST /v1/signatures/enrollment
type EnrollmentResponse struct {
	// Valid is true if the signature verifies and was made by the master signing address
	Valid    bool            `json:"valid"`
	Document validate.Result `json:"document"`
}

// ChainResponse is returned by POST /v1/signatures/chain
type ChainResponse struct {
	validate.ChainResult

	// FailedStage is the first layer that did not verify
	FailedStage validate.Stage `json:"failedStage,omitempty"`
	Reason      string         `json:"reason,omitempty"`
}

// HandleVerify godoc
//
//	@Summary		Verify a signed document
//	@Description	Parses an armored document and verifies its signature over the signed text.
//	@Tags			Signatures
//	@Accept			plain
//	@Produce		json
//	@Param			body	body		string			true	"Armored signed document"
//	@Success		200		{object}	validate.Result
//	@Failure		400		{object}	api.ErrorResponse	"Empty body"
//	@Router			/v1/signatures/verify [post]
func (h *SignatureHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	text, err := readText(r)
	if err != nil {
		api.RespondWithError(w, r, err)
		return
	}

	res := h.validator.VerifySig(text)
	logger.ContextWithLogAttrs(r.Context(),
		slog.Bool("valid", res.Valid),
		slog.String("signature_address", res.SignatureAddress),
	)
	api.RespondWithJSONPayload(w, http.StatusOK, res)
}

// HandleEnrollment godoc
//
//	@Summary		Validate an enrollment
//	@Description	An enrollment is valid if its signature verifies and it was signed by its declared master signing address.
//	@Tags			Signatures
//	@Accept			plain
//	@Produce		json
//	@Param			body	body		string	true	"Armored enrollment"
//	@Success		200		{object}	EnrollmentResponse
//	@Failure		400		{object}	api.ErrorResponse	"Empty body"
//	@Router			/v1/signatures/enrollment [post]
func (h *SignatureHandler) HandleEnrollment(w http.ResponseWriter, r *http.Request) {
	text, err := readText(r)
	if err != nil {
		api.RespondWithError(w, r, err)
		return
	}

	res, valid := h.validator.ValidateEnrollment(text)
	logger.ContextWithLogAttrs(r.Context(), slog.Bool("valid", valid))
	api.RespondWithJSONPayload(w, http.StatusOK, EnrollmentResponse{Valid: valid, Document: res})
}

// HandleChain godoc
//
//	@Summary		Validate an endorsement chain
//	@Description	Verifies an audit, the review embedded in it and the enrollment embedded in the review.
//	@Description	Verification stops at the first layer that does not verify.
//	@Tags			Signatures
//	@Accept			plain
//	@Produce		json
//	@Param			body	body		string	true	"Armored audit"
//	@Success		200		{object}	ChainResponse
//	@Failure		400		{object}	api.ErrorResponse	"Empty body"
//	@Router			/v1/signatures/chain [post]
func (h *SignatureHandler) HandleChain(w http.ResponseWriter, r *http.Request) {
	text, err := readText(r)
	if err != nil {
		api.RespondWithError(w, r, err)
		return
	}

	res := h.validator.ValidateChain(text)
	resp := ChainResponse{ChainResult: res}
	if res.Err != nil {
		resp.FailedStage = res.Err.Stage
		resp.Reason = res.Err.Error()
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.Bool("valid", res.Valid),
		slog.String("failed_stage", string(resp.FailedStage)),
	)
	api.RespondWithJSONPayload(w, http.StatusOK, resp)
}
