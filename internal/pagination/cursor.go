// Package pagination implements opaque keyset cursors and page limits shared
// by the incident listing and the audit trail.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strings"

	"adr.app/ledger/internal/model"
)

const cursorVersion = 1

type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder accepts "", "asc" and "desc". Empty means ascending.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(s) {
	case "", string(OrderAsc):
		return OrderAsc, nil
	case string(OrderDesc):
		return OrderDesc, nil
	}
	return "", model.InvalidArgumentf("unknown sort order %q", s)
}

// Cursor identifies the last row a page returned, together with the query it
// belongs to. A cursor is only valid for the exact query that produced it.
type Cursor struct {
	Version     int    `json:"v"`
	Dimension   string `json:"dim"`
	Value       string `json:"val"`
	Order       Order  `json:"order"`
	Fingerprint string `json:"fp"`
	LastKey     string `json:"k"`
	LastID      string `json:"id"`
}

// Scope is the part of a cursor that must match the query it is replayed against.
type Scope struct {
	Dimension   string
	Value       string
	Order       Order
	Fingerprint string
}

func (s Scope) After(lastKey, lastID string) Cursor {
	return Cursor{
		Version:     cursorVersion,
		Dimension:   s.Dimension,
		Value:       s.Value,
		Order:       s.Order,
		Fingerprint: s.Fingerprint,
		LastKey:     lastKey,
		LastID:      lastID,
	}
}

func Encode(c Cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// Decode parses token and checks it was issued for scope. An empty token
// yields a nil cursor.
func Decode(token string, scope Scope) (*Cursor, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, model.InvalidArgumentf("malformed cursor")
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, model.InvalidArgumentf("malformed cursor")
	}
	if c.Version != cursorVersion || c.LastKey == "" || c.LastID == "" {
		return nil, model.InvalidArgumentf("malformed cursor")
	}
	if c.Dimension != scope.Dimension || c.Value != scope.Value || c.Order != scope.Order || c.Fingerprint != scope.Fingerprint {
		return nil, model.InvalidArgumentf("cursor does not match query filters")
	}
	return &c, nil
}

// Fingerprint condenses the secondary filters of a query so that a cursor
// replayed with different filters is rejected.
func Fingerprint(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Limit resolves a requested page size: 0 selects def, values above max are clamped.
func Limit(requested, def, max int) (int, error) {
	switch {
	case requested < 0:
		return 0, model.InvalidArgumentf("limit must not be negative, got %d", requested)
	case requested == 0:
		return def, nil
	case requested > max:
		return max, nil
	}
	return requested, nil
}
