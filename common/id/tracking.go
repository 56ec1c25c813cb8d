package id

import (
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

const (
	trackingPrefix    = "ABEND"
	trackingSeparator = "_"
)

var (
	ErrInvalidJobName    = errors.New("invalid job name")
	ErrInvalidTrackingID = errors.New("invalid tracking id")
)

var suffixPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// NewTrackingID returns ABEND_<jobName>_<suffix>. The suffix is the hex form of a
// UUIDv7, so ids sort by creation time and need no shared sequence.
func NewTrackingID(jobName string) (string, error) {
	if err := ValidateJobName(jobName); err != nil {
		return "", err
	}
	u := uuid.Must(uuid.NewV7())
	return trackingPrefix + trackingSeparator + jobName + trackingSeparator + hex.EncodeToString(u[:]), nil
}

// ValidateJobName rejects names that cannot be embedded in a tracking id.
func ValidateJobName(jobName string) error {
	if jobName == "" {
		return fmt.Errorf("%w: empty", ErrInvalidJobName)
	}
	if strings.Contains(jobName, trackingSeparator) {
		return fmt.Errorf("%w: %q contains separator %q", ErrInvalidJobName, jobName, trackingSeparator)
	}
	if strings.IndexFunc(jobName, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q contains whitespace", ErrInvalidJobName, jobName)
	}
	return nil
}

// ParseTrackingID splits a tracking id into its job name and suffix.
func ParseTrackingID(trackingID string) (jobName, suffix string, err error) {
	parts := strings.Split(trackingID, trackingSeparator)
	if len(parts) != 3 || parts[0] != trackingPrefix {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTrackingID, trackingID)
	}
	if err := ValidateJobName(parts[1]); err != nil {
		return "", "", fmt.Errorf("%w %q: %w", ErrInvalidTrackingID, trackingID, err)
	}
	if !suffixPattern.MatchString(parts[2]) {
		return "", "", fmt.Errorf("%w: suffix %q", ErrInvalidTrackingID, parts[2])
	}
	return parts[1], parts[2], nil
}
