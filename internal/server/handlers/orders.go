package handlers

// orders.go implements the order endpoints. The stage of an order is derived from its stored
// documents on every request.

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rein-network/rein-node/internal/api"
	"github.com/rein-network/rein-node/internal/logger"
	"github.com/rein-network/rein-node/internal/order"
	"github.com/rein-network/rein-node/internal/validate"
)

// OrderHandler handles the /v1/orders and /v1/users endpoints
type OrderHandler struct {
	orders    *order.Service
	validator *validate.Validator
}

func NewOrderHandler(orders *order.Service, validator *validate.Validator) *OrderHandler {
	return &OrderHandler{orders: orders, validator: validator}
}

// AttachDocumentRequest is the body of POST /v1/orders/{jobID}/documents
type AttachDocumentRequest struct {
	// DocType is the order document type, e.g. "bid" or "offer"
	DocType string `json:"docType" example:"bid"`

	// Contents is the armored signed document
	Contents string `json:"contents"`

	// Identity is the master address of the user the document belongs to
	Identity string `json:"identity,omitempty"`

	// SourceURL is the server the document was fetched from (default "local")
	SourceURL string `json:"sourceUrl,omitempty"`

	// The parties are only recorded when the order is created
	JobCreatorMaddr string `json:"jobCreatorMaddr,omitempty"`
	MediatorMaddr   string `json:"mediatorMaddr,omitempty"`
	WorkerMaddr     string `json:"workerMaddr,omitempty"`
}

// HandleState godoc
//
//	@Summary		Get the stage of an order
//	@Description	Derives the current stage of the order from its documents.
//	@Tags			Orders
//	@Produce		json
//	@Param			jobID	path		string	true	"Job id"
//	@Success		200		{object}	order.Summary
//	@Failure		404		{object}	api.ErrorResponse	"No order for the job"
//	@Router			/v1/orders/{jobID}/state [get]
func (h *OrderHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	summary, err := h.orders.Summary(r.Context(), jobID)
	if err != nil {
		api.RespondWithError(w, r, orderError(err, jobID))
		return
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.String("job_id", jobID),
		slog.String("state", string(summary.State)),
	)
	api.RespondWithJSONPayload(w, http.StatusOK, summary)
}

// HandleAttach godoc
//
//	@Summary		Attach a signed document to an order
//	@Description	Verifies the document signature and stores it with the order for the job,
//	@Description	creating the order if needed. Order documents must carry the job id of the path in their signed
//	@Description	contents. Enrollments must also be signed by their master signing address.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			jobID	path		string					true	"Job id"
//	@Param			body	body		AttachDocumentRequest	true	"Signed document"
//	@Success		201		{object}	order.Summary
//	@Failure		400		{object}	api.ErrorResponse	"Malformed request, bad signature or document for another job"
//	@Router			/v1/orders/{jobID}/documents [post]
func (h *OrderHandler) HandleAttach(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	var req AttachDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		api.RespondWithError(w, r, err)
		return
	}

	docType, err := order.ParseDocType(req.DocType)
	if err != nil {
		api.RespondWithError(w, r, api.WrapMalformedRequestError(err, "invalid docType"))
		return
	}
	if strings.TrimSpace(req.Contents) == "" {
		api.RespondWithError(w, r, api.NewMalformedRequestError("contents is required"))
		return
	}

	var res validate.Result
	valid := false
	if docType == order.Enrollment {
		res, valid = h.validator.ValidateEnrollment(req.Contents)
	} else {
		res = h.validator.VerifySig(req.Contents)
		valid = res.Valid
	}
	if !valid {
		api.RespondWithError(w, r, api.NewBadSignatureError(fmt.Sprintf("%s signature does not verify", docType)))
		return
	}

	if docType.IsOrderDocument() {
		signedJobID, ok := res.Field(order.FieldJobID)
		if !ok {
			api.RespondWithError(w, r, api.NewInvalidDocumentError(fmt.Sprintf("%s does not name a job", docType)))
			return
		}
		if strings.TrimSpace(signedJobID) != jobID {
			api.RespondWithError(w, r, api.NewInvalidDocumentError(
				fmt.Sprintf("document is signed for job %s, not %s", strings.TrimSpace(signedJobID), jobID)))
			return
		}
	}

	sourceURL := req.SourceURL
	if sourceURL == "" {
		sourceURL = order.SourceLocal
	}

	summary, err := h.orders.Attach(r.Context(), jobID,
		order.Parties{
			JobCreatorMaddr: req.JobCreatorMaddr,
			MediatorMaddr:   req.MediatorMaddr,
			WorkerMaddr:     req.WorkerMaddr,
		},
		order.NewDocument{
			DocType:    docType,
			Contents:   req.Contents,
			SigAddress: res.SignatureAddress,
			SourceURL:  sourceURL,
			Identity:   req.Identity,
		},
	)
	if err != nil {
		api.RespondWithError(w, r, api.WrapInternalError(err, "failed to store document"))
		return
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.String("job_id", jobID),
		slog.String("doc_type", string(docType)),
		slog.String("state", string(summary.State)),
	)
	api.RespondWithJSONPayload(w, http.StatusCreated, summary)
}

// HandleUserOrders godoc
//
//	@Summary		List the orders of a user
//	@Description	Returns the summaries of the orders the user has documents in, most recent first.
//	@Tags			Orders
//	@Produce		json
//	@Param			identity	path	string	true	"Master address of the user"
//	@Success		200			{array}	order.Summary
//	@Router			/v1/users/{identity}/orders [get]
func (h *OrderHandler) HandleUserOrders(w http.ResponseWriter, r *http.Request) {
	identity := chi.URLParam(r, "identity")

	summaries, err := h.orders.UserSummaries(r.Context(), identity)
	if err != nil {
		api.RespondWithError(w, r, api.WrapInternalError(err, "failed to load user orders"))
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.Int("orders", len(summaries)))
	api.RespondWithJSONPayload(w, http.StatusOK, summaries)
}

func orderError(err error, jobID string) error {
	if errors.Is(err, order.ErrOrderNotFound) {
		return api.NewNotFoundError(fmt.Sprintf("no order for job %s", jobID))
	}
	return api.WrapInternalError(err, "failed to load order")
}
