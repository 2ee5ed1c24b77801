package utils

import (
	"testing"

	pkgerrors "crux-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type labelsRequest struct {
	Labels []string `json:"labels" validate:"max=3,dive,label"`
}

type dimensionRequest struct {
	TargetID string `json:"targetId" validate:"required,uuid"`
	Type     string `json:"type" validate:"required,dimensiontype"`
	Weight   *int   `json:"weight" validate:"omitempty,min=0"`
}

func TestValidateStruct_Labels(t *testing.T) {
	require.NoError(t, ValidateStruct(labelsRequest{Labels: []string{"Go", "web-dev"}}))
	require.NoError(t, ValidateStruct(labelsRequest{}))

	err := ValidateStruct(labelsRequest{Labels: []string{"ok", "not ok"}})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Contains(t, err.Error(), "labels[1]")

	err = ValidateStruct(labelsRequest{Labels: []string{"a", "b", "c", "d"}})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestValidateStruct_Dimension(t *testing.T) {
	neg := -1
	err := ValidateStruct(dimensionRequest{TargetID: "nope", Type: "orbit", Weight: &neg})
	require.Error(t, err)

	appErr := pkgerrors.GetAppError(err)
	require.NotNil(t, appErr)
	fields := appErr.Details["fields"].(map[string]interface{})
	assert.Len(t, fields, 3)
	assert.Contains(t, appErr.Message, "type must be one of: gate garden growth graft")
	assert.Contains(t, appErr.Message, "targetId must be a valid id")
}
