package fast

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"mime"
	"strconv"
	"strings"
)

// Encoder encodes response values to a wire format.
type Encoder interface {
	ContentType() string
	Encode(w io.Writer, v any) error
}

// Decoder decodes request bodies from a wire format.
type Decoder interface {
	ContentType() string
	Decode(r io.Reader, v any) error
}

// jsonCodec is the default codec on both sides of the wire.
type jsonCodec struct{}

func (jsonCodec) ContentType() string { return "application/json" }

func (jsonCodec) Encode(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func (jsonCodec) Decode(r io.Reader, v any) error {
	// An empty body decodes to the zero value.
	if err := json.NewDecoder(r).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

type xmlCodec struct{}

func (xmlCodec) ContentType() string { return "application/xml" }

func (xmlCodec) Encode(w io.Writer, v any) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	return xml.NewEncoder(w).Encode(v)
}

func (xmlCodec) Decode(r io.Reader, v any) error {
	if err := xml.NewDecoder(r).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// codecRegistry holds the encoders and decoders available to a router.
// JSON is always first and acts as the default; XML second; user codecs
// follow in registration order.
type codecRegistry struct {
	encoders []Encoder
	decoders []Decoder
}

func newCodecRegistry(userEncoders []Encoder, userDecoders []Decoder) *codecRegistry {
	cr := &codecRegistry{}
	cr.encoders = append([]Encoder{jsonCodec{}, xmlCodec{}}, userEncoders...)
	cr.decoders = append([]Decoder{jsonCodec{}, xmlCodec{}}, userDecoders...)
	return cr
}

// negotiate picks the encoder for an Accept header. An empty header or a
// bare */* falls back to JSON; an explicit Accept with no matching encoder
// reports false so the caller can respond 406.
func (cr *codecRegistry) negotiate(accept string) (Encoder, bool) {
	if accept == "" {
		return cr.encoders[0], true
	}

	var best Encoder
	bestQ := -1.0

	for part := range strings.SplitSeq(accept, ",") {
		mediaType, params, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		q := acceptQuality(params)
		if q <= bestQ {
			continue
		}
		if enc := cr.encoderFor(mediaType); enc != nil {
			best, bestQ = enc, q
		}
	}

	if best == nil {
		return nil, false
	}
	return best, true
}

func acceptQuality(params map[string]string) float64 {
	qs, ok := params["q"]
	if !ok {
		return 1.0
	}
	q, err := strconv.ParseFloat(qs, 64)
	if err != nil {
		return 1.0
	}
	return q
}

func (cr *codecRegistry) encoderFor(mediaType string) Encoder {
	if mediaType == "*/*" {
		return cr.encoders[0]
	}
	for _, enc := range cr.encoders {
		if enc.ContentType() == mediaType {
			return enc
		}
	}
	return nil
}

// decoderFor returns the decoder for a request Content-Type. An empty
// content type defaults to JSON; an unrecognized one reports false so the
// caller can respond 400.
func (cr *codecRegistry) decoderFor(contentType string) (Decoder, bool) {
	if contentType == "" {
		return cr.decoders[0], true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, false
	}
	for _, dec := range cr.decoders {
		if dec.ContentType() == mediaType {
			return dec, true
		}
	}
	return nil, false
}

// contentTypes lists every encoder media type, in registry order. The
// OpenAPI builder uses this to enumerate response content.
func (cr *codecRegistry) contentTypes() []string {
	cts := make([]string, len(cr.encoders))
	for i, enc := range cr.encoders {
		cts[i] = enc.ContentType()
	}
	return cts
}
