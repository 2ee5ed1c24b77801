package handlers

import (
	"net/http"

	"crux-backend/domain/core/valueobjects"
	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// TagHandler handles tag-related HTTP requests
type TagHandler struct {
	service      GraphService
	errs         *pkgerrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewTagHandler creates a new tag handler
func NewTagHandler(service GraphService, errs *pkgerrors.ErrorHandler, maxBodyBytes int64, logger *zap.Logger) *TagHandler {
	return &TagHandler{
		service:      service,
		errs:         errs,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// ListTags handles GET /{resource}/{key}/tags
//
//	@Summary	List the tags of a resource
//	@Tags		tags
//	@Produce	json
//	@Param		resource	path		string	true	"Resource collection"	Enums(authors, cruxes, dimensions, paths, tags, themes)
//	@Param		key			path		string	true	"Resource key"
//	@Success	200			{array}		TagResponse
//	@Failure	404			{object}	pkgerrors.ErrorResponse
//	@Router		/{resource}/{key}/tags [get]
func (h *TagHandler) ListTags(resourceType valueobjects.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := h.service.ListTags(r.Context(), resourceType, chi.URLParam(r, "key"))
		if err != nil {
			h.errs.Handle(w, r, err)
			return
		}
		common.RespondJSON(w, http.StatusOK, toTagResponses(tags))
	}
}

// SyncTags handles PUT /{resource}/{key}/tags
//
//	@Summary		Replace the tags of a resource
//	@Description	Labels are lowercased and deduplicated. Tags not in the list are removed, missing ones are created.
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			resource	path		string			true	"Resource collection"	Enums(authors, cruxes, dimensions, paths, tags, themes)
//	@Param			key			path		string			true	"Resource key"
//	@Param			body		body		SyncTagsRequest	true	"Desired labels"
//	@Success		200			{object}	SyncTagsResponse
//	@Failure		400			{object}	pkgerrors.ErrorResponse
//	@Failure		404			{object}	pkgerrors.ErrorResponse
//	@Router			/{resource}/{key}/tags [put]
func (h *TagHandler) SyncTags(resourceType valueobjects.ResourceType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			h.errs.Handle(w, r, err)
			return
		}

		var req SyncTagsRequest
		if err := decodeBody(w, r, h.maxBodyBytes, &req); err != nil {
			h.errs.Handle(w, r, err)
			return
		}

		result, err := h.service.SyncTags(r.Context(), resourceType, chi.URLParam(r, "key"), req.Labels, actor)
		if err != nil {
			h.errs.Handle(w, r, err)
			return
		}

		common.RespondJSON(w, http.StatusOK, SyncTagsResponse{
			Tags:    toTagResponses(result.Tags),
			Added:   nonNil(result.Added),
			Removed: nonNil(result.Removed),
		})
	}
}

// GetTag handles GET /tags/{key}
//
//	@Summary	Get one tag
//	@Tags		tags
//	@Produce	json
//	@Param		key	path		string	true	"Tag key"
//	@Success	200	{object}	TagResponse
//	@Failure	404	{object}	pkgerrors.ErrorResponse
//	@Router		/tags/{key} [get]
func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	tag, err := h.service.GetTag(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toTagResponse(tag))
}

// UpdateTag handles PUT /tags/{key}
//
//	@Summary	Relabel a tag (admin)
//	@Tags		tags
//	@Accept		json
//	@Produce	json
//	@Param		key		path		string				true	"Tag key"
//	@Param		body	body		UpdateTagRequest	true	"New label"
//	@Success	200		{object}	TagResponse
//	@Failure	403		{object}	pkgerrors.ErrorResponse
//	@Router		/tags/{key} [put]
func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	var req UpdateTagRequest
	if err := decodeBody(w, r, h.maxBodyBytes, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	tag, err := h.service.UpdateTag(r.Context(), chi.URLParam(r, "key"), req.Label, actor)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, toTagResponse(tag))
}

// DeleteTag handles DELETE /tags/{key}
//
//	@Summary	Delete a tag (admin)
//	@Tags		tags
//	@Param		key	path	string	true	"Tag key"
//	@Success	204
//	@Failure	403	{object}	pkgerrors.ErrorResponse
//	@Router		/tags/{key} [delete]
func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFrom(r)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	if err := h.service.DeleteTag(r.Context(), chi.URLParam(r, "key"), actor); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
