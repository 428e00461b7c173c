package inventory

import (
	"encoding/base64"
	"fmt"
	"regexp"
)

// ImageFile is a decoded inline image payload.
type ImageFile struct {
	MIME string
	Ext  string
	Body []byte
}

// dataURLPattern matches data:<type>/<subtype>;base64,<data> payloads. The
// subtype doubles as the file extension of the stored object.
var dataURLPattern = regexp.MustCompile(`^data:([a-zA-Z0-9.+-]+)/([a-zA-Z0-9.+-]+);base64,(.*)$`)

// ParseDataURL inspects an image attribute value. A plain string (including
// an ordinary URL) returns ok=false with no error and is stored verbatim. A
// data-URL is decoded; a data-URL whose base64 section does not decode is an
// ErrInvalidImagePayload, surfaced rather than silently dropped.
func ParseDataURL(s string) (*ImageFile, bool, error) {
	m := dataURLPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, false, nil
	}
	body, err := base64.StdEncoding.DecodeString(m[3])
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidImagePayload, err)
	}
	return &ImageFile{
		MIME: m[1] + "/" + m[2],
		Ext:  m[2],
		Body: body,
	}, true, nil
}
