package model

import (
	"fmt"
	"sort"

	"github.com/invopop/jsonschema"
)

var blobTypes = map[string]any{
	"emailMetadata":         &EmailMetadata{},
	"knowledgeBaseMetadata": &KnowledgeBaseMetadata{},
	"remediationMetadata":   &RemediationMetadata{},
}

// BlobKinds lists the metadata blobs that have a published schema.
func BlobKinds() []string {
	kinds := make([]string, 0, len(blobTypes))
	for k := range blobTypes {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// BlobSchema returns the JSON Schema of one metadata blob.
func BlobSchema(kind string) (*jsonschema.Schema, error) {
	v, ok := blobTypes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: schema %q", ErrNotFound, kind)
	}
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return reflector.Reflect(v), nil
}
