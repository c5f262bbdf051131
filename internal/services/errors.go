package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSchemaMismatch marks feature frames whose feature names differ
	// within one timeline. Fatal before any rendering starts.
	ErrSchemaMismatch = errors.New("feature schema mismatch")
	// ErrNonMonotonicTime marks feature frames whose timestamps are not
	// strictly increasing. Fatal before any rendering starts.
	ErrNonMonotonicTime = errors.New("non-monotonic feature time")
	// ErrConfiguration marks invalid configuration or layout values.
	ErrConfiguration = errors.New("configuration error")
	// ErrFrameComposition marks a single-frame drawing failure. Recoverable:
	// the pipeline substitutes a degraded frame and continues.
	ErrFrameComposition = errors.New("frame composition error")
	// ErrEncode marks encoder failures. Fatal; partial output is discarded.
	ErrEncode = errors.New("encode error")
	// ErrExternalTool marks failures of external binaries (ffmpeg, ffprobe).
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks rejected collaborator input (commentary, audio).
	ErrValidation = errors.New("validation error")
	// ErrTransient marks retryable failures such as LLM timeouts.
	ErrTransient = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether the error must abort the whole render. Per-frame
// composition failures are the only recoverable class.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrFrameComposition)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
