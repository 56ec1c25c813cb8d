package service

import (
	"bytes"
	"encoding/json"
	"fmt"

	"adr.app/ledger/internal/model"
)

// Stamps and store-maintained fields never appear in audit diffs.
var auditIgnoredFields = map[string]bool{
	"updatedAt":       true,
	"updatedBy":       true,
	"generation":      true,
	"visitedStatuses": true,
}

func snapshot(i *model.Incident) (json.RawMessage, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("encoding incident: %w", err)
	}
	return data, nil
}

// changedFields returns the before and after values of every field that differs,
// so a status change always carries status on both sides.
func changedFields(before, after *model.Incident) (json.RawMessage, json.RawMessage, error) {
	b, err := fieldMap(before)
	if err != nil {
		return nil, nil, err
	}
	a, err := fieldMap(after)
	if err != nil {
		return nil, nil, err
	}

	outBefore := make(map[string]json.RawMessage)
	outAfter := make(map[string]json.RawMessage)
	for _, k := range unionKeys(b, a) {
		if auditIgnoredFields[k] {
			continue
		}
		bv, inBefore := b[k]
		av, inAfter := a[k]
		if inBefore && inAfter && bytes.Equal(bv, av) {
			continue
		}
		outBefore[k] = orNull(bv)
		outAfter[k] = orNull(av)
	}

	encBefore, err := json.Marshal(outBefore)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding audit diff: %w", err)
	}
	encAfter, err := json.Marshal(outAfter)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding audit diff: %w", err)
	}
	return encBefore, encAfter, nil
}

func fieldMap(i *model.Incident) (map[string]json.RawMessage, error) {
	data, err := json.Marshal(i)
	if err != nil {
		return nil, fmt.Errorf("encoding incident: %w", err)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decoding incident fields: %w", err)
	}
	return fields, nil
}

func unionKeys(a, b map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func orNull(v json.RawMessage) json.RawMessage {
	if v == nil {
		return json.RawMessage("null")
	}
	return v
}
