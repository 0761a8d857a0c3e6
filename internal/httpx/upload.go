package httpx

import (
	"errors"
	"io"
	"net/http"

	"go-social/internal/apperr"
)

// UploadField is the multipart field carrying uploaded images.
const UploadField = "uploaded_file"

// ReadUpload reads the single uploaded file of a multipart request, refusing
// bodies larger than limit bytes.
func ReadUpload(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.Validation("file_too_large", "uploaded file is too large")
		}
		return nil, apperr.Validation("malformed_upload", "request must be multipart/form-data")
	}

	file, _, err := r.FormFile(UploadField)
	if err != nil {
		return nil, apperr.Validation("missing_file", `multipart field "uploaded_file" is required`)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apperr.Validation("malformed_upload", "uploaded file could not be read")
	}
	if len(data) == 0 {
		return nil, apperr.Validation("empty_file", "uploaded file is empty")
	}
	return data, nil
}
