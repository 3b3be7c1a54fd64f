package parser

// Kind classifies a parse failure.
type Kind int

const (
	// KindNoJSONFound indicates the response contains no JSON object.
	KindNoJSONFound Kind = iota

	// KindUnterminatedJSON indicates an object opened but never closed.
	KindUnterminatedJSON

	// KindInvalidJSON indicates the extracted candidate is not valid JSON.
	KindInvalidJSON

	// KindMissingToolField indicates the object has no tool field.
	KindMissingToolField

	// KindUnknownTool indicates the named capability is not registered.
	KindUnknownTool

	// KindMissingParameter indicates a required parameter is absent.
	KindMissingParameter
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNoJSONFound:
		return "no_json_found"
	case KindUnterminatedJSON:
		return "unterminated_json"
	case KindInvalidJSON:
		return "invalid_json"
	case KindMissingToolField:
		return "missing_tool_field"
	case KindUnknownTool:
		return "unknown_tool"
	case KindMissingParameter:
		return "missing_parameter"
	default:
		return "unknown"
	}
}

// ParseError reports why a model response could not be turned into an
// action. Message is phrased for feedback to the decision model.
type ParseError struct {
	Kind    Kind
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Message
}

func newParseError(kind Kind, message string) *ParseError {
	return &ParseError{Kind: kind, Message: message}
}
