package handlers

import (
	"net/http"

	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CruxHandler handles crux deletion. Creating and editing cruxes belongs to
// the content service.
type CruxHandler struct {
	service GraphService
	errs    *pkgerrors.ErrorHandler
	logger  *zap.Logger
}

// NewCruxHandler creates a new crux handler
func NewCruxHandler(service GraphService, errs *pkgerrors.ErrorHandler, logger *zap.Logger) *CruxHandler {
	return &CruxHandler{service: service, errs: errs, logger: logger}
}

// DeleteCrux handles DELETE /cruxes/{key}
//
//	@Summary		Delete a crux you created
//	@Description	Soft-deletes the crux and every dimension its author drew to or from it.
//	@Tags			cruxes
//	@Produce		json
//	@Param			key	path		string	true	"Crux key"
//	@Success		200	{object}	DeleteCruxResponse
//	@Failure		403	{object}	pkgerrors.ErrorResponse
//	@Failure		404	{object}	pkgerrors.ErrorResponse
//	@Router			/cruxes/{key} [delete]
func (h *CruxHandler) DeleteCrux(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	key := chi.URLParam(r, "key")
	cascaded, err := h.service.DeleteCrux(r.Context(), key, actor)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, DeleteCruxResponse{Key: key, CascadedDimensions: cascaded})
}
