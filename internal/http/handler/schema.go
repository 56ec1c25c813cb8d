package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"adr.app/ledger/internal/model"
)

// SchemaHandler publishes JSON Schemas of the metadata blobs so producers
// can validate payloads before writing them.
type SchemaHandler struct{}

func NewSchemaHandler() *SchemaHandler {
	return &SchemaHandler{}
}

func (h *SchemaHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"kinds": model.BlobKinds()})
}

func (h *SchemaHandler) Get(c *gin.Context) {
	schema, err := model.BlobSchema(c.Param("kind"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}

// Validate checks a request body against the named blob schema without storing it.
func (h *SchemaHandler) Validate(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		writeBindError(c, err)
		return
	}
	if err := model.ValidateBlobJSON(c.Param("kind"), raw); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
