package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rein-network/rein-node/internal/api"
	"github.com/rein-network/rein-node/internal/block"
	"github.com/rein-network/rein-node/internal/logger"
)

// BlockResolver returns block times (implemented by *block.Oracle).
type BlockResolver interface {
	GetTime(ctx context.Context, hash string) (block.Block, bool, error)
	ResolveBlock(ctx context.Context, hash string, sources []block.Source) (block.Block, error)
}

// BlockHandler handles GET /v1/blocks/{hash}
type BlockHandler struct {
	resolver BlockResolver
	sources  []block.Source
}

func NewBlockHandler(resolver BlockResolver, sources []block.Source) *BlockHandler {
	return &BlockHandler{resolver: resolver, sources: sources}
}

// HandleGetBlock godoc
//
//	@Summary		Get the time of a block
//	@Description	Returns the stored block, resolving it against the oracle registry if it is not known.
//	@Description	With cached=true only stored blocks are returned.
//	@Tags			Blocks
//	@Produce		json
//	@Param			hash	path		string	true	"Block hash (64 hex characters)"
//	@Param			cached	query		bool	false	"Do not query the oracles"
//	@Success		200		{object}	block.Block
//	@Failure		400		{object}	api.ErrorResponse	"Invalid hash"
//	@Failure		404		{object}	api.ErrorResponse	"Block not stored (cached=true)"
//	@Failure		502		{object}	api.ErrorResponse	"No oracle resolved the block"
//	@Router			/v1/blocks/{hash} [get]
func (h *BlockHandler) HandleGetBlock(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")
	if !block.ValidHash(hash) {
		api.RespondWithError(w, r, api.NewMalformedRequestError("hash must be 64 hex characters"))
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.String("hash", hash))

	if r.URL.Query().Get("cached") == "true" {
		b, ok, err := h.resolver.GetTime(r.Context(), hash)
		if err != nil {
			api.RespondWithError(w, r, api.WrapInternalError(err, "failed to load block"))
			return
		}
		if !ok {
			api.RespondWithError(w, r, api.NewNotFoundError("block is not stored"))
			return
		}
		api.RespondWithJSONPayload(w, http.StatusOK, b)
		return
	}

	b, err := h.resolver.ResolveBlock(r.Context(), hash, h.sources)
	if err != nil {
		if errors.Is(err, block.ErrUnresolved) {
			api.RespondWithError(w, r, api.WrapOracleUnavailableError(err, "no oracle resolved the block"))
			return
		}
		api.RespondWithError(w, r, api.WrapInternalError(err, "failed to resolve block"))
		return
	}
	api.RespondWithJSONPayload(w, http.StatusOK, b)
}
