// Package ticket encodes registration identifiers into QR payloads and back.
//
// A payload is a fixed textual prefix followed by the registration id.  Two
// prefixes have been printed on tickets so far and both must keep scanning;
// the oldest tickets carried a JSON object with an "id" field instead.
package ticket

import (
	"encoding/json"
	"errors"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// PrefixCurrent is written into every newly issued ticket.
	PrefixCurrent = "TRIBUTO-RICKY-MARTIN-"
	// PrefixLegacy was used by the first single-guest tickets.
	PrefixLegacy = "CENA-SHOW-VANI-"

	// ImageSize is the side, in pixels, of rendered QR images.
	ImageSize = 256
)

var (
	// ErrUnrecognized is returned when a payload matches no known format.
	ErrUnrecognized = errors.New("qr payload format not recognized")
	// ErrMissingID is returned when a payload is well formed but carries no id.
	ErrMissingID = errors.New("qr payload has no registration id")
)

// Codec builds and parses QR payloads.  The zero value is not usable; use
// NewCodec.
type Codec struct {
	prefix string
	known  []string
}

// NewCodec returns a codec that issues payloads with prefix (PrefixCurrent
// when empty) and recognizes prefix plus both built-in prefixes.
func NewCodec(prefix string) *Codec {
	if prefix == "" {
		prefix = PrefixCurrent
	}
	known := []string{prefix}
	for _, p := range []string{PrefixCurrent, PrefixLegacy} {
		if p != prefix {
			known = append(known, p)
		}
	}
	return &Codec{prefix: prefix, known: known}
}

// Prefix returns the prefix used for new payloads.
func (c *Codec) Prefix() string { return c.prefix }

// Payload returns the string to encode into the QR for id.
func (c *Codec) Payload(id string) string { return c.prefix + id }

// ParseID extracts the registration id from a scanned payload.
func (c *Codec) ParseID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, p := range c.known {
		if strings.HasPrefix(raw, p) {
			id := strings.TrimSpace(strings.TrimPrefix(raw, p))
			if id == "" {
				return "", ErrMissingID
			}
			return id, nil
		}
	}
	var obj struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return "", ErrUnrecognized
	}
	id := jsonID(obj.ID)
	if id == "" {
		return "", ErrMissingID
	}
	return id, nil
}

// jsonID accepts a string or numeric id; numbers keep their literal form.
func jsonID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// PNG renders payload as a QR image with medium error correction.
func PNG(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, ImageSize)
}
