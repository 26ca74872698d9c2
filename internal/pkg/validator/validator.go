package validator

// Validator checks the constraints declared on a struct's validate tags.
type Validator interface {
	// Validate returns nil when data satisfies its constraints, or an
	// error describing the violated fields.
	Validate(data any) error
}
