package compress

import (
	"errors"
	"fmt"
)

// CompressionErrorKind categorizes compression failures.
type CompressionErrorKind string

const (
	// CompressionSizeLimitExceeded means the payload is larger than the
	// configured uncompressed ceiling, on either side of the codec.
	CompressionSizeLimitExceeded CompressionErrorKind = "SIZE_LIMIT_EXCEEDED"

	// CompressionMalformed means the compressed data is not a valid frame.
	CompressionMalformed CompressionErrorKind = "MALFORMED"
)

// CompressionError reports a payload the codec refuses to process.
type CompressionError struct {
	Kind    CompressionErrorKind
	Message string
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// IsSizeLimitExceeded reports whether err is a size ceiling failure.
// Uses errors.As to handle wrapped errors.
func IsSizeLimitExceeded(err error) bool {
	var ce *CompressionError
	return errors.As(err, &ce) && ce.Kind == CompressionSizeLimitExceeded
}

// IsMalformed reports whether err is a corrupt frame failure.
func IsMalformed(err error) bool {
	var ce *CompressionError
	return errors.As(err, &ce) && ce.Kind == CompressionMalformed
}
