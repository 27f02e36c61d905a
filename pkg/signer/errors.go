package signer

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Sentinel errors for signer operations.
var (
	ErrInvalidConfig  = errors.New("signer: invalid configuration")
	ErrPresignFailed  = errors.New("signer: presign failed")
	ErrDeleteFailed   = errors.New("signer: delete failed")
	ErrNotFound       = errors.New("signer: object not found")
	ErrAccessDenied   = errors.New("signer: access denied")
	ErrForeignLocator = errors.New("signer: locator does not belong to this bucket")
)

// wrapS3Error wraps S3 errors with appropriate sentinel errors.
// Note: Uses %v (not %w) for the original error to normalize error types -
// callers should use errors.Is() with sentinel errors, not errors.As() for AWS types.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}

	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}
