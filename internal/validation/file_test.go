package validation

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is the magic prefix http.DetectContentType recognizes as
// image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func multipartHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("avatar", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))

	headers := req.MultipartForm.File["avatar"]
	require.Len(t, headers, 1)
	return headers[0]
}

func TestValidateFileAcceptsPNG(t *testing.T) {
	header := multipartHeader(t, "avatar.png", pngHeader)
	assert.NoError(t, ValidateFile(header, AvatarConstraints))
}

func TestValidateFileRejectsWrongContent(t *testing.T) {
	// PNG extension but plain text bytes; detection goes by content.
	header := multipartHeader(t, "avatar.png", []byte("just some text"))
	err := ValidateFile(header, AvatarConstraints)
	assert.ErrorContains(t, err, "invalid file type")
}

func TestValidateFileRejectsWrongExtension(t *testing.T) {
	header := multipartHeader(t, "avatar.gif", pngHeader)
	err := ValidateFile(header, AvatarConstraints)
	assert.ErrorContains(t, err, "invalid file extension")
}

func TestValidateFileRejectsOversize(t *testing.T) {
	constraints := AvatarConstraints
	constraints.MaxSize = 4

	header := multipartHeader(t, "avatar.png", pngHeader)
	err := ValidateFile(header, constraints)
	assert.ErrorContains(t, err, "file too large")
}
