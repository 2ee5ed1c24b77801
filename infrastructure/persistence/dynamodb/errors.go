package dynamodb

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"
)

// isConditionalCheckFailed reports whether a conditional write was rejected
func isConditionalCheckFailed(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ConditionalCheckFailedException"
}

// isTableMissing reports whether the table or index does not exist
func isTableMissing(err error) bool {
	var ae smithy.APIError
	return errors.As(err, &ae) && ae.ErrorCode() == "ResourceNotFoundException"
}

// wrap annotates err with the operation and, for API errors, the service
// error code
func wrap(operation string, err error) error {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return fmt.Errorf("dynamodb %s: %s: %w", operation, ae.ErrorCode(), err)
	}
	return fmt.Errorf("dynamodb %s: %w", operation, err)
}
