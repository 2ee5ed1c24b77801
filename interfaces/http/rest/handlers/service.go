package handlers

import (
	"context"
	"net/http"

	"crux-backend/application/services"
	"crux-backend/domain/core/entities"
	"crux-backend/domain/core/valueobjects"
	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"
	"crux-backend/pkg/utils"
)

// GraphService is what the handlers need from the application layer
type GraphService interface {
	CreateDimension(ctx context.Context, sourceKey string, input services.CreateDimensionInput, actor common.Actor) (*entities.Dimension, error)
	GetDimension(ctx context.Context, key string) (*entities.Dimension, error)
	ListDimensions(ctx context.Context, sourceKey string, dimensionType *valueobjects.DimensionType, page common.PageRequest) ([]*entities.Dimension, int, error)
	UpdateDimension(ctx context.Context, key string, update entities.DimensionUpdate, actor common.Actor) (*entities.Dimension, error)
	DeleteDimension(ctx context.Context, key string, actor common.Actor) error
	DeleteCrux(ctx context.Context, key string, actor common.Actor) (int, error)
	SyncTags(ctx context.Context, resourceType valueobjects.ResourceType, key string, labels []string, actor common.Actor) (*services.SyncResult, error)
	ListTags(ctx context.Context, resourceType valueobjects.ResourceType, key string) ([]*entities.Tag, error)
	GetTag(ctx context.Context, key string) (*entities.Tag, error)
	UpdateTag(ctx context.Context, key, label string, actor common.Actor) (*entities.Tag, error)
	DeleteTag(ctx context.Context, key string, actor common.Actor) error
	Ping(ctx context.Context) error
}

var _ GraphService = (*services.ResourceGraphService)(nil)

func actorFrom(r *http.Request) (common.Actor, error) {
	actor, ok := common.GetActor(r.Context())
	if !ok {
		return common.Actor{}, pkgerrors.NewUnauthorizedError("Unauthorized")
	}
	return actor, nil
}

// decodeBody parses and validates a JSON request body
func decodeBody(w http.ResponseWriter, r *http.Request, maxBytes int64, v interface{}) error {
	if err := common.ParseJSONBody(w, r, v, maxBytes); err != nil {
		return pkgerrors.NewValidationError("Invalid request body: " + err.Error())
	}
	return utils.ValidateStruct(v)
}
