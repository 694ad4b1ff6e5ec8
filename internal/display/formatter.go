package display

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"
)

// MaskSecret hides a secret for display. Empty values stay empty so an unset
// password is visible as such.
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// DecodeID returns the "Type:pk" form of a Saleor global id, or the id
// itself when it is not base64 encoded.
func DecodeID(id string) string {
	raw, err := base64.StdEncoding.DecodeString(id)
	if err != nil || !strings.Contains(string(raw), ":") {
		return id
	}
	return string(raw)
}

// FormatFieldError renders an API field error as "field: message".
func FormatFieldError(field, message string) string {
	if field == "" {
		return message
	}
	return ColorField(field) + ": " + message
}

// OutputJSON writes v as indented JSON.
func OutputJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
