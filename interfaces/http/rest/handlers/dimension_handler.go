package handlers

import (
	"net/http"

	"crux-backend/application/services"
	"crux-backend/domain/config"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DimensionHandler handles dimension-related HTTP requests
type DimensionHandler struct {
	service      GraphService
	cfg          *config.DomainConfig
	errs         *pkgerrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewDimensionHandler creates a new dimension handler
func NewDimensionHandler(
	service GraphService,
	cfg *config.DomainConfig,
	errs *pkgerrors.ErrorHandler,
	maxBodyBytes int64,
	logger *zap.Logger,
) *DimensionHandler {
	return &DimensionHandler{
		service:      service,
		cfg:          cfg,
		errs:         errs,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// CreateDimension handles POST /cruxes/{key}/dimensions
//
//	@Summary	Link a crux to another crux
//	@Tags		dimensions
//	@Accept		json
//	@Produce	json
//	@Param		key		path		string					true	"Source crux key"
//	@Param		body	body		CreateDimensionRequest	true	"Dimension"
//	@Success	201		{object}	DimensionResponse
//	@Failure	400		{object}	pkgerrors.ErrorResponse
//	@Failure	404		{object}	pkgerrors.ErrorResponse
//	@Router		/cruxes/{key}/dimensions [post]
func (h *DimensionHandler) CreateDimension(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	var req CreateDimensionRequest
	if err := decodeBody(w, r, h.maxBodyBytes, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	dimension, err := h.service.CreateDimension(r.Context(), chi.URLParam(r, "key"), services.CreateDimensionInput{
		TargetID: req.TargetID,
		Type:     valueobjects.DimensionType(req.Type),
		Weight:   req.Weight,
		Note:     req.Note,
	}, actor)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toDimensionResponse(dimension))
}

// ListDimensions handles GET /cruxes/{key}/dimensions
//
//	@Summary	List the dimensions leaving a crux, newest first
//	@Tags		dimensions
//	@Produce	json
//	@Param		key		path		string	true	"Source crux key"
//	@Param		type	query		string	false	"Dimension type"	Enums(gate, garden, growth, graft)
//	@Param		page	query		int		false	"Page number"
//	@Param		perPage	query		int		false	"Page size"
//	@Success	200		{array}		DimensionResponse
//	@Header		200		{string}	Link		"first, prev, next and last page links"
//	@Header		200		{string}	Pagination	"currentPage, perPage and total as JSON"
//	@Failure	404		{object}	pkgerrors.ErrorResponse
//	@Router		/cruxes/{key}/dimensions [get]
func (h *DimensionHandler) ListDimensions(w http.ResponseWriter, r *http.Request) {
	var dimensionType *valueobjects.DimensionType
	if raw := r.URL.Query().Get("type"); raw != "" {
		t, err := valueobjects.ParseDimensionType(raw)
		if err != nil {
			h.errs.Handle(w, r, err)
			return
		}
		dimensionType = &t
	}

	page := common.ExtractPageRequest(r, h.cfg.DefaultPageSize, h.cfg.MaxPageSize)

	dimensions, total, err := h.service.ListDimensions(r.Context(), chi.URLParam(r, "key"), dimensionType, page)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	links := common.BuildPageLinks(page.Page, page.PerPage, total, common.RequestURL(r), page.PerPageParam)
	if err := links.WriteHeaders(w); err != nil {
		h.logger.Warn("Failed to write pagination headers", zap.Error(err))
	}

	common.RespondWithMeta(w, http.StatusOK, toDimensionResponses(dimensions), &common.MetaInfo{
		Pagination: &links.Summary,
	})
}

// GetDimension handles GET /dimensions/{key}
//
//	@Summary	Get one dimension
//	@Tags		dimensions
//	@Produce	json
//	@Param		key	path		string	true	"Dimension key"
//	@Success	200	{object}	DimensionResponse
//	@Failure	404	{object}	pkgerrors.ErrorResponse
//	@Router		/dimensions/{key} [get]
func (h *DimensionHandler) GetDimension(w http.ResponseWriter, r *http.Request) {
	dimension, err := h.service.GetDimension(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toDimensionResponse(dimension))
}

// UpdateDimension handles PUT /dimensions/{key}
//
//	@Summary	Change a dimension you created
//	@Tags		dimensions
//	@Accept		json
//	@Produce	json
//	@Param		key		path		string					true	"Dimension key"
//	@Param		body	body		UpdateDimensionRequest	true	"Changes"
//	@Success	200		{object}	DimensionResponse
//	@Failure	400		{object}	pkgerrors.ErrorResponse
//	@Failure	403		{object}	pkgerrors.ErrorResponse
//	@Router		/dimensions/{key} [put]
func (h *DimensionHandler) UpdateDimension(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	var req UpdateDimensionRequest
	if err := decodeBody(w, r, h.maxBodyBytes, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	update := entities.DimensionUpdate{Weight: req.Weight, Note: req.Note}
	if req.Type != nil {
		t := valueobjects.DimensionType(*req.Type)
		update.Type = &t
	}

	dimension, err := h.service.UpdateDimension(r.Context(), chi.URLParam(r, "key"), update, actor)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toDimensionResponse(dimension))
}

// DeleteDimension handles DELETE /dimensions/{key}
//
//	@Summary	Delete a dimension you created
//	@Tags		dimensions
//	@Param		key	path	string	true	"Dimension key"
//	@Success	204
//	@Failure	403	{object}	pkgerrors.ErrorResponse
//	@Router		/dimensions/{key} [delete]
func (h *DimensionHandler) DeleteDimension(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if err := h.service.DeleteDimension(r.Context(), chi.URLParam(r, "key"), actor); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
