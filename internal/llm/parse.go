package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/persona/internal/model"
)

const fence = "```"

// errMalformed marks a reply that decoded but has the wrong structure
var errMalformed = errors.New("malformed reply")

// extractor returns a decoding candidate, or false when it does not apply
type extractor func(text string) (string, bool)

// extractors are tried in order; the first that applies supplies the candidate
var extractors = []extractor{
	fencedBlock,
	wholeText,
}

// ParseReply turns a generator reply into a complete AttributeMap.
// It never fails: anything that cannot be decoded yields FallbackAttributes.
func ParseReply(raw string) model.AttributeMap {
	attrs, err := DecodeReply(raw)
	if err != nil {
		return FallbackAttributes()
	}
	return attrs
}

// DecodeReply is ParseReply with the failure reason exposed.
// On error the returned map is the fallback.
func DecodeReply(raw string) (attrs model.AttributeMap, err error) {
	defer func() {
		if r := recover(); r != nil {
			attrs, err = FallbackAttributes(), fmt.Errorf("%w: decoder panic: %v", errMalformed, r)
		}
	}()

	text := strings.TrimSpace(raw)
	candidate := ""
	for _, extract := range extractors {
		if c, ok := extract(text); ok {
			candidate = strings.TrimSpace(c)
			break
		}
	}
	if candidate == "" {
		return FallbackAttributes(), fmt.Errorf("%w: empty reply", errMalformed)
	}

	decoded, err := decodeObject(candidate)
	if err != nil {
		return FallbackAttributes(), err
	}

	// Absent or null keys keep their fallback value
	attrs = FallbackAttributes()
	for _, attr := range model.Attributes {
		rawValue, present := decoded[string(attr)]
		if !present || isNull(rawValue) {
			continue
		}
		value, err := decodeValue(attr, rawValue)
		if err != nil {
			return FallbackAttributes(), err
		}
		attrs[attr] = value
	}

	return attrs, nil
}

// IsMalformed reports whether err came from an undecodable reply
func IsMalformed(err error) bool {
	return errors.Is(err, errMalformed)
}

// fencedBlock applies when the text contains a code fence. The candidate is
// everything after the opening fence line up to the next fence (or the end).
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}
	rest := text[start+len(fence):]

	// Skip the info string (e.g. "json") on the opening fence line
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		rest = strings.TrimLeft(rest, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
	}

	if end := strings.Index(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return rest, true
}

// wholeText always applies
func wholeText(text string) (string, bool) {
	return text, true
}

func decodeObject(candidate string) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("%w: not a JSON object", errMalformed)
	}
	// Trailing content after the object means the reply was not a single object
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON object", errMalformed)
	}
	return obj, nil
}

func decodeValue(attr model.Attribute, raw json.RawMessage) (model.Value, error) {
	if attr.IsList() {
		var items []string
		if err := json.Unmarshal(raw, &items); err != nil {
			return model.Value{}, fmt.Errorf("%w: %s must be a list of strings", errMalformed, attr)
		}
		return model.List(items...), nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return model.Value{}, fmt.Errorf("%w: %s must be a string", errMalformed, attr)
	}
	return model.Scalar(text), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
