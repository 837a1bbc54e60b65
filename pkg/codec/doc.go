// Package codec converts geographic records to and from the delimited text
// payload carried inside each store frame.
//
// # Payload Format
//
// A record is rendered as a single comma-separated line with no terminator:
//
//	key,placeLabel,region,subregion,latitude,longitude
//
// Fields are positional. Decoding ignores any tokens after the sixth and
// treats missing trailing tokens as empty. Latitude and longitude are written
// with the shortest decimal representation that parses back to the same
// float64, so a decoded record compares equal to the record that was encoded.
//
// # Delimiters
//
// The delimiter is never escaped. Encode refuses records whose text fields
// contain it, and refuses keys that are empty or contain whitespace, since the
// key is also the first token of an index line. Data that passed Encode can
// therefore always be split unambiguously.
//
// # Numeric Policies
//
// Two decode paths exist. The bulk ingest path reads source rows whose
// coordinates may be blank and uses EmptyAsZero. Every other path uses Strict,
// where a blank or malformed coordinate is an ErrDecode. Both policies reject
// text that is present but not a number.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//
//	payload, err := c.Encode(&codec.Record{Key: "00501", PlaceLabel: "Holtsville",
//	    Region: "NY", Subregion: "Suffolk", Latitude: 40.8154, Longitude: -73.0451})
//	if err != nil {
//	    return err
//	}
//
//	r, err := c.Decode(payload)
//	if err != nil {
//	    return err // errors.Is(err, codec.ErrDecode)
//	}
//
// RecordCodec instances hold no mutable state and are safe for concurrent use.
package codec
