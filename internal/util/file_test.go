package util

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func TestDetectMimeType(t *testing.T) {
	pdf := []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n")

	tests := []struct {
		name    string
		content []byte
		kind    UploadKind
		want    string
		wantErr error
	}{
		{"pdf assignment", pdf, UploadAssignment, MimePDF, nil},
		{"text submission", []byte("jawaban nomor satu"), UploadSubmission, "text/plain", nil},
		{"png avatar", pngBytes(t), UploadAvatar, "image/png", nil},
		{"pdf avatar", pdf, UploadAvatar, MimePDF, ErrFileTypeForbidden},
		{"executable", []byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00"), UploadMaterial, "", ErrFileTypeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectMimeType(bytes.NewReader(tt.content), tt.kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "laporan_akhir.pdf", SanitizeFileName("laporan akhir.pdf"))
	assert.Equal(t, "passwd", SanitizeFileName("../../etc/passwd"))
	assert.Equal(t, "tugas.docx", SanitizeFileName(`C:\Users\budi\tugas.docx`))
	assert.Equal(t, "file", SanitizeFileName(""))
	assert.Equal(t, "ab.txt", SanitizeFileName(`a"b;.txt`))
}

func TestContentTypeByExt(t *testing.T) {
	assert.Equal(t, MimePDF, ContentTypeByExt("a.PDF"))
	assert.Equal(t, MimeXLSX, ContentTypeByExt("nilai.xlsx"))
	assert.Equal(t, "video/mp4", ContentTypeByExt("video.mp4"))
	assert.Equal(t, MimeOctetStream, ContentTypeByExt("noext"))
}

func TestExtensionFor(t *testing.T) {
	assert.Equal(t, ".pdf", ExtensionFor(MimePDF))
	assert.Equal(t, ".png", ExtensionFor("image/png"))
	assert.Equal(t, ".txt", ExtensionFor("text/plain"))
	assert.Equal(t, ".bin", ExtensionFor("application/x-unknown-thing"))
}

func TestIdentifierFormats(t *testing.T) {
	assert.True(t, IsValidNIS("0012345"))
	assert.False(t, IsValidNIS("12a45"))
	assert.False(t, IsValidNIS("123"))
	assert.True(t, IsValidNIK("3201010101010001"))
	assert.False(t, IsValidNIK("320101010101000"))
	assert.True(t, IsValidNUPTK("1234567890123456"))
}

func TestGenerateRandomString(t *testing.T) {
	code := GenerateRandomString(6)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.Contains(t, randomAlphabet, string(r))
	}
	assert.NotEqual(t, GenerateRandomString(12), GenerateRandomString(12))
}
