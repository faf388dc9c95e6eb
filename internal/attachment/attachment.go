// Package attachment validates scanned documents attached to letters.
// Only images and PDF files are accepted.
package attachment

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/starford/esurat/internal/apperr"
)

// URLPrefix is the path under which uploaded files are served.
const URLPrefix = "/attachments/"

// MaxSize is the largest accepted file.
const MaxSize = 10 << 20

// UnsupportedMessage is shown when a file is neither an image nor a PDF.
const UnsupportedMessage = "File tidak didukung. Gunakan JPG/PNG atau PDF."

// Allowed reports whether the media type may be attached.
func Allowed(mediaType string) bool {
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	return strings.HasPrefix(mediaType, "image/") || mediaType == "application/pdf"
}

// Detect sniffs data and returns its media type and file extension.
// It fails when the content is not an allowed type.
func Detect(data []byte) (mediaType, ext string, err error) {
	mt := mimetype.Detect(data)
	mediaType = strings.Split(mt.String(), ";")[0]
	if !Allowed(mediaType) {
		return "", "", apperr.Invalid(UnsupportedMessage)
	}
	return mediaType, mt.Extension(), nil
}

// DecodeDataURL parses a base64 data:[<mediatype>];base64,<data> URL.
func DecodeDataURL(uri string) (mediaType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, fmt.Errorf("invalid data URL: missing data: prefix")
	}
	meta, encoded, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("invalid data URL: missing comma separator")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("only base64 data URLs are supported")
	}
	data, err = base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return "", nil, fmt.Errorf("invalid base64 data: %w", err)
		}
	}
	mediaType = strings.Split(strings.TrimSuffix(meta, ";base64"), ";")[0]
	return mediaType, data, nil
}

// EncodeDataURL returns data as a base64 data URL.
func EncodeDataURL(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// remoteExtensions are the file endings accepted for links to scans hosted
// elsewhere.
var remoteExtensions = map[string]bool{
	".pdf": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".bmp": true, ".tif": true, ".tiff": true, ".heic": true,
}

// validRemote reports whether ref is an http(s) link to an image or PDF,
// judged by the extension of its path.
func validRemote(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	return remoteExtensions[strings.ToLower(path.Ext(u.Path))]
}

// Validate checks one attachment reference: a data URL of an allowed type, a
// URL of a previously uploaded file, or an http(s) link to an image or PDF.
func Validate(ref string) error {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		if !validRemote(ref) {
			return apperr.Invalid(UnsupportedMessage)
		}
		return nil
	}
	if name, ok := strings.CutPrefix(ref, URLPrefix); ok {
		if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
			return apperr.Invalid(UnsupportedMessage)
		}
		return nil
	}
	declared, data, err := DecodeDataURL(ref)
	if err != nil || !Allowed(declared) {
		return apperr.Invalid(UnsupportedMessage)
	}
	if len(data) > MaxSize {
		return apperr.Invalid("Ukuran file terlalu besar.")
	}
	if _, _, err := Detect(data); err != nil {
		return err
	}
	return nil
}

// ValidateAll checks every reference in order.
func ValidateAll(refs []string) error {
	for _, ref := range refs {
		if err := Validate(ref); err != nil {
			return err
		}
	}
	return nil
}
