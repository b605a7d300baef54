package api

import "net/http"

var supportedDocumentTypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
}

// sniffDocument reports the detected content type of an upload and whether
// it is one the review staff can open.
func sniffDocument(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	contentType := http.DetectContentType(body)
	_, ok := supportedDocumentTypes[contentType]
	return contentType, ok
}
