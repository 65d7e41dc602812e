package snapshot

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/emberkeep/emberkeep/internal/state"
)

// SchemaVersion is the version Encode writes. Decode additionally accepts
// every older version back to 1, upgrading on the way in.
const SchemaVersion uint32 = 2

// magic identifies a snapshot payload. Anything not starting with it is
// rejected as malformed before the version is even read.
var magic = []byte("EKSNAP")

// Encode serializes a graph into a versioned snapshot payload.
// The input is cloned and normalized first, so the caller's graph is never
// mutated and semantically equal graphs yield byte-identical payloads.
func Encode(g *state.Graph) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("encode snapshot: nil graph")
	}

	norm := g.Clone()
	norm.Normalize()

	body, err := marshalCanonical(encodeDocument(norm))
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}

	buf := make([]byte, 0, len(magic)+binary.MaxVarintLen32+len(body))
	buf = append(buf, magic...)
	buf = binary.AppendUvarint(buf, uint64(SchemaVersion))
	buf = append(buf, body...)
	return buf, nil
}

// Split separates a payload into its schema version and document body
// without decoding the body. Used by the integrity layer to stamp the
// artifact header and by deep verification to validate the document.
func Split(data []byte) (uint32, []byte, error) {
	if len(data) < len(magic)+1 {
		return 0, nil, newTruncated("payload is %d bytes, shorter than the header", len(data))
	}
	if !bytes.Equal(data[:len(magic)], magic) {
		return 0, nil, newMalformed("payload does not start with snapshot magic")
	}

	version, n := binary.Uvarint(data[len(magic):])
	if n == 0 {
		return 0, nil, newTruncated("payload ends inside the version field")
	}
	if n < 0 || version > math.MaxUint32 {
		return 0, nil, newMalformed("schema version field overflows uint32")
	}

	return uint32(version), data[len(magic)+n:], nil
}

// Version returns the schema version a payload declares.
func Version(data []byte) (uint32, error) {
	v, _, err := Split(data)
	return v, err
}

// Decode parses a snapshot payload into a graph, dispatching on the
// declared schema version. Older versions are upgraded to the current
// in-memory shape; versions newer than SchemaVersion fail with
// DecodeUnknownSchema.
func Decode(data []byte) (*state.Graph, error) {
	version, body, err := Split(data)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, newTruncated("payload has no document body")
	}

	switch version {
	case 1:
		return decodeV1(body)
	case 2:
		return decodeV2(body)
	default:
		return nil, &DecodeError{
			Kind:    DecodeUnknownSchema,
			Version: version,
			Message: fmt.Sprintf("schema version %d is newer than supported version %d", version, SchemaVersion),
		}
	}
}

func decodeV2(body []byte) (*state.Graph, error) {
	var doc docV2
	if err := strictUnmarshal(body, &doc); err != nil {
		return nil, classifyBodyError(err)
	}
	return doc.toGraph(), nil
}

// strictUnmarshal decodes JSON rejecting unknown fields and trailing data.
// The schema version gates compatibility; within a version the document
// shape is exact.
func strictUnmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("trailing data after document")
	}
	return nil
}

// classifyBodyError distinguishes a body that stops short from one that is
// structurally wrong. json.Decoder reports mid-value truncation as
// io.ErrUnexpectedEOF; json.Unmarshal reports it as a SyntaxError.
func classifyBodyError(err error) *DecodeError {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return newTruncated("document body: %v", err)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) && strings.Contains(syntaxErr.Error(), "unexpected end of JSON input") {
		return newTruncated("document body: %v", err)
	}
	return newMalformed("document body: %v", err)
}
