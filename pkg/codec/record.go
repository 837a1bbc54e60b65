package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Delimiter separates the fields of an encoded record
const Delimiter = ','

// FieldCount is the number of positional fields in an encoded record
const FieldCount = 6

// Record is one geographic row keyed by its postal code
type Record struct {
	Key        string  `json:"key"`
	PlaceLabel string  `json:"place_label"`
	Region     string  `json:"region"`
	Subregion  string  `json:"subregion"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
}

// NumericPolicy controls how blank coordinate fields decode
type NumericPolicy int

const (
	// Strict rejects blank or malformed coordinates
	Strict NumericPolicy = iota
	// EmptyAsZero decodes a blank coordinate as 0 and rejects malformed ones.
	// Only the bulk ingest path uses it.
	EmptyAsZero
)

func (p NumericPolicy) String() string {
	switch p {
	case Strict:
		return "strict"
	case EmptyAsZero:
		return "empty-as-zero"
	default:
		return fmt.Sprintf("NumericPolicy(%d)", int(p))
	}
}

// RecordCodec handles serialization and deserialization of records
type RecordCodec struct {
	policy NumericPolicy
}

// NewRecordCodec creates a codec that decodes coordinates strictly
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{policy: Strict}
}

// NewIngestCodec creates a codec for the bulk ingest path
func NewIngestCodec() *RecordCodec {
	return &RecordCodec{policy: EmptyAsZero}
}

// Policy returns the numeric policy used by Decode
func (c *RecordCodec) Policy() NumericPolicy {
	return c.policy
}

// Encode renders a record as a delimited payload
// Format: key,placeLabel,region,subregion,latitude,longitude
func (c *RecordCodec) Encode(r *Record) ([]byte, error) {
	if err := Validate(r); err != nil {
		return nil, err
	}

	var b strings.Builder
	b.Grow(len(r.Key) + len(r.PlaceLabel) + len(r.Region) + len(r.Subregion) + 48)
	b.WriteString(r.Key)
	b.WriteByte(Delimiter)
	b.WriteString(r.PlaceLabel)
	b.WriteByte(Delimiter)
	b.WriteString(r.Region)
	b.WriteByte(Delimiter)
	b.WriteString(r.Subregion)
	b.WriteByte(Delimiter)
	b.WriteString(FormatCoordinate(r.Latitude))
	b.WriteByte(Delimiter)
	b.WriteString(FormatCoordinate(r.Longitude))

	return []byte(b.String()), nil
}

// Decode parses a delimited payload into a Record
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	return c.DecodeFields(strings.Split(string(data), string(Delimiter)))
}

// DecodeFields builds a Record from already split fields. Fields past the
// sixth are ignored and missing fields are treated as empty.
func (c *RecordCodec) DecodeFields(fields []string) (*Record, error) {
	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	lat, err := c.parseCoordinate(field(4))
	if err != nil {
		return nil, fmt.Errorf("%w: latitude: %v", ErrDecode, err)
	}
	lng, err := c.parseCoordinate(field(5))
	if err != nil {
		return nil, fmt.Errorf("%w: longitude: %v", ErrDecode, err)
	}

	return &Record{
		Key:        field(0),
		PlaceLabel: field(1),
		Region:     field(2),
		Subregion:  field(3),
		Latitude:   lat,
		Longitude:  lng,
	}, nil
}

func (c *RecordCodec) parseCoordinate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		if c.policy == EmptyAsZero {
			return 0, nil
		}
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w %q", ErrNonFinite, s)
	}
	return v, nil
}

// KeyOf returns the first delimited token of a payload without decoding the
// rest. It does not validate the payload.
func KeyOf(data []byte) string {
	s := string(data)
	if i := strings.IndexByte(s, Delimiter); i >= 0 {
		return s[:i]
	}
	return s
}

// FormatCoordinate renders a coordinate so that it parses back exactly
func FormatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Validate reports whether a record can be encoded without ambiguity
func Validate(r *Record) error {
	if r == nil {
		return fmt.Errorf("%w: nil record", ErrInvalidKey)
	}
	if err := ValidateKey(r.Key); err != nil {
		return err
	}
	for _, f := range []struct{ name, value string }{
		{"place label", r.PlaceLabel},
		{"region", r.Region},
		{"subregion", r.Subregion},
	} {
		if strings.IndexByte(f.value, Delimiter) >= 0 {
			return fmt.Errorf("%w: %s %q", ErrDelimiterInField, f.name, f.value)
		}
	}
	for _, c := range []struct {
		name  string
		value float64
	}{
		{"latitude", r.Latitude},
		{"longitude", r.Longitude},
	} {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return fmt.Errorf("%w: %s %v", ErrNonFinite, c.name, c.value)
		}
	}
	return nil
}

// ValidateKey checks that a key can appear as the first token of both a
// payload and an index line
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	if strings.IndexByte(key, Delimiter) >= 0 || strings.IndexFunc(key, unicode.IsSpace) >= 0 {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
