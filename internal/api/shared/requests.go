package shared

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// validate is shared across requests; validator.Validate caches struct
// metadata, so one instance is cheaper than one per call.
var validate = validator.New()

// DecodeJSON decodes the request body into v.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// ValidateRequest validates a decoded request. Types carrying their own
// Validate method are validated through it; everything else goes through the
// struct tags.
func ValidateRequest(v interface{}) error {
	if sv, ok := v.(interface{ Validate() error }); ok {
		return sv.Validate()
	}
	return validate.Struct(v)
}
