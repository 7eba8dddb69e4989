package protocol

// Bool returns a pointer for an optional boolean field.
func Bool(v bool) *bool {
	return &v
}

// String returns a pointer for an optional string field.
func String(v string) *string {
	return &v
}

// Float returns a pointer for an optional number field.
func Float(v float64) *float64 {
	return &v
}

// BoolValue dereferences an optional boolean, treating nil as false.
func BoolValue(v *bool) bool {
	return v != nil && *v
}

// StringValue dereferences an optional string, treating nil as "".
func StringValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
