package drain

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

var errUnknownEncoding = errors.New("unknown or unsupported encoding")

// LookupEncoding resolves an IANA charset name such as "IBM437" or "UTF-16LE".
// An empty name or UTF-8 returns nil, meaning the bytes are passed through as is.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return nil, nil //nolint:nilnil // nil encoding means passthrough.
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errUnknownEncoding, name, err)
	}

	if enc == nil {
		return nil, fmt.Errorf("%w: %s", errUnknownEncoding, name)
	}

	return enc, nil
}
