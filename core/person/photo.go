package person

import (
	"bytes"
	"encoding/base64"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/shulehub/shule/core"
)

// photos are stored fitted into this box, re-encoded as JPEG
const maxPhotoDim = 512

var errBadDataURI = core.NewValidationError(errors.New("malformed image data-URI"),
	core.FieldError{Field: "photo", Error: "must be a base64 image data-URI"})

// decodeDataURI extracts the raw bytes from a "data:image/...;base64,..." URI.
func decodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:image/") {
		return nil, errBadDataURI
	}
	i := strings.Index(uri, ";base64,")
	if i < 0 {
		return nil, errBadDataURI
	}
	raw, err := base64.StdEncoding.DecodeString(uri[i+len(";base64,"):])
	if err != nil {
		return nil, errBadDataURI
	}
	return raw, nil
}

// processPhoto decodes an uploaded image, fits it into the storage box and
// re-encodes it as JPEG.
func processPhoto(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrap(err, "decoding photo")
	}
	img = imaging.Fit(img, maxPhotoDim, maxPhotoDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err = imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, errors.Wrap(err, "encoding photo")
	}
	return buf.Bytes(), nil
}
