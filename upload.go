package fast

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// FileUpload is a single file extracted from a multipart form. It is the
// bound value for struct fields tagged `form:"..."` with a FileUpload type
// and for declared file parameters.
type FileUpload struct {
	Filename string
	Size     int64
	Header   *multipart.FileHeader
	file     multipart.File
}

// Open returns a reader over the uploaded contents. The reader from the
// original parse is reused when still available.
func (f *FileUpload) Open() (io.ReadCloser, error) {
	if f.file != nil {
		return f.file, nil
	}
	if f.Header == nil {
		return nil, fmt.Errorf("no file header")
	}
	file, err := f.Header.Open()
	if err != nil {
		return nil, err
	}
	f.file = file
	return file, nil
}

// ParseFileUpload pulls the named file out of a multipart request. Useful
// from RawRequest handlers that manage the form themselves.
func ParseFileUpload(r *http.Request, fieldName string) (*FileUpload, error) {
	file, header, err := r.FormFile(fieldName)
	if err != nil {
		return nil, fmt.Errorf("form file %q: %w", fieldName, err)
	}
	return &FileUpload{
		Filename: header.Filename,
		Size:     header.Size,
		Header:   header,
		file:     file,
	}, nil
}
