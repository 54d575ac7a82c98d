package api

// MethodOverrideField is the hidden form field that carries the intended
// verb on POST /todo/{id}.
const MethodOverrideField = "_method"

// Override is the operation selected by the method override field.
type Override int

const (
	OverrideToggle Override = iota + 1
	OverrideDelete
)

// String returns the form value for o.
func (o Override) String() string {
	switch o {
	case OverrideToggle:
		return "put"
	case OverrideDelete:
		return "delete"
	default:
		return ""
	}
}

// ParseOverride classifies a method override value. Matching is exact:
// "put" toggles, "delete" deletes, anything else (including "" and "PUT")
// is rejected.
func ParseOverride(value string) (Override, bool) {
	switch value {
	case "put":
		return OverrideToggle, true
	case "delete":
		return OverrideDelete, true
	default:
		return 0, false
	}
}
