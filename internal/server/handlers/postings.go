package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rein-network/rein-node/internal/api"
	"github.com/rein-network/rein-node/internal/armor"
	"github.com/rein-network/rein-node/internal/block"
	"github.com/rein-network/rein-node/internal/expiry"
	"github.com/rein-network/rein-node/internal/logger"
	"github.com/rein-network/rein-node/internal/validate"
)

// ExpiryFilter removes expired postings (implemented by *expiry.Filter).
type ExpiryFilter interface {
	FilterOutExpired(ctx context.Context, candidates []expiry.Candidate, sources []block.Source) []expiry.Candidate
}

// PostingHandler handles POST /v1/postings/live
type PostingHandler struct {
	validator *validate.Validator
	filter    ExpiryFilter
	sources   []block.Source
}

func NewPostingHandler(validator *validate.Validator, filter ExpiryFilter, sources []block.Source) *PostingHandler {
	return &PostingHandler{validator: validator, filter: filter, sources: sources}
}

// LivePostingsRequest is the body of POST /v1/postings/live
type LivePostingsRequest struct {
	// Documents are armored job postings
	Documents []string `json:"documents"`
}

// LivePostingsResponse lists the parsed fields (and title) of the postings that have not expired, in request order
type LivePostingsResponse struct {
	Received int                `json:"received"`
	Valid    int                `json:"valid"`
	Live     []expiry.Candidate `json:"live"`
}

// HandleLive godoc
//
//	@Summary		Filter out expired job postings
//	@Description	Keeps the postings that carry a valid signature and a clock hash, and whose
//	@Description	clock block time plus expiration is in the future.
//	@Tags			Postings
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LivePostingsRequest	true	"Armored postings"
//	@Success		200		{object}	LivePostingsResponse
//	@Failure		400		{object}	api.ErrorResponse	"Malformed request"
//	@Router			/v1/postings/live [post]
func (h *PostingHandler) HandleLive(w http.ResponseWriter, r *http.Request) {
	var req LivePostingsRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithError(w, r, err)
		return
	}

	valid := h.validator.FilterValidSigs(req.Documents, expiry.FieldClockHash)

	candidates := make([]expiry.Candidate, 0, len(valid))
	for _, doc := range valid {
		candidates = append(candidates, expiry.Candidate(armor.ParseDocument(armor.StripArmor(doc, false))))
	}
	live := h.filter.FilterOutExpired(r.Context(), candidates, h.sources)

	logger.ContextWithLogAttrs(r.Context(),
		slog.Int("received", len(req.Documents)),
		slog.Int("valid", len(valid)),
		slog.Int("live", len(live)),
	)
	api.RespondWithJSONPayload(w, http.StatusOK, LivePostingsResponse{
		Received: len(req.Documents),
		Valid:    len(valid),
		Live:     live,
	})
}
