package codec

// Errors
var (
	ErrDecode           = &CodecError{"malformed record"}
	ErrInvalidKey       = &CodecError{"invalid key"}
	ErrDelimiterInField = &CodecError{"delimiter in field"}
	ErrNonFinite        = &CodecError{"non-finite coordinate"}
)

// CodecError represents a record encoding or decoding error
type CodecError struct {
	Message string
}

func (e *CodecError) Error() string {
	return e.Message
}
