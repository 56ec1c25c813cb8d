package id

import (
	"encoding/hex"

	"github.com/google/uuid"
)

const sopPrefix = "SOP_"

// NewSOPID returns SOP_<suffix>, with the same time-ordered suffix as tracking ids.
func NewSOPID() string {
	u := uuid.Must(uuid.NewV7())
	return sopPrefix + hex.EncodeToString(u[:])
}
