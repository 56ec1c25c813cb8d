package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateIncident checks field shapes, enum membership and the blob sub-schemas.
func ValidateIncident(i *Incident) error {
	if i == nil {
		return InvalidArgumentf("incident is required")
	}
	if !i.Status.Valid() {
		return InvalidArgumentf("unknown status %q", i.Status)
	}
	if !i.Severity.Valid() {
		return InvalidArgumentf("unknown severity %q", i.Severity)
	}
	for phase, d := range i.Metrics {
		if !phase.Valid() {
			return InvalidArgumentf("unknown phase %q", phase)
		}
		if d < 0 {
			return InvalidArgumentf("phase %s has negative duration", phase)
		}
	}
	if err := validate.Struct(i); err != nil {
		return validationError(err)
	}
	return nil
}

// ValidateSOP checks the shape of an SOP record.
func ValidateSOP(s *SOP) error {
	if s == nil {
		return InvalidArgumentf("sop is required")
	}
	if err := validate.Struct(s); err != nil {
		return validationError(err)
	}
	return nil
}

// ValidateBlob validates one structured metadata object against its sub-schema.
func ValidateBlob(blob any) error {
	if blob == nil || reflect.ValueOf(blob).IsNil() {
		return nil
	}
	if err := validate.Struct(blob); err != nil {
		return validationError(err)
	}
	return nil
}

// ValidateBlobJSON decodes raw as the named metadata blob, refusing fields the
// schema does not declare, and validates the result.
func ValidateBlobJSON(kind string, raw []byte) error {
	proto, ok := blobTypes[kind]
	if !ok {
		return fmt.Errorf("%w: schema %q", ErrNotFound, kind)
	}
	blob := reflect.New(reflect.TypeOf(proto).Elem()).Interface()
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(blob); err != nil {
		return InvalidArgumentf("%s: %v", kind, err)
	}
	return ValidateBlob(blob)
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return InvalidArgumentf("%s", strings.Join(msgs, "; "))
}
