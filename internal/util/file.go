package util

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// UploadKind selects the MIME allow-list applied to an upload.
type UploadKind string

const (
	UploadAssignment UploadKind = "assignment"
	UploadSubmission UploadKind = "submission"
	UploadMaterial   UploadKind = "material"
	UploadAvatar     UploadKind = "avatar"
)

var documentMimes = []string{
	MimePDF,
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/vnd.ms-powerpoint",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"application/vnd.ms-excel",
	MimeXLSX,
	"application/x-ole-storage",
	"text/plain",
	MimeZip,
	"image/jpeg",
	"image/png",
}

var allowedMimes = map[UploadKind][]string{
	UploadAssignment: documentMimes,
	UploadSubmission: documentMimes,
	UploadMaterial:   append(append([]string{}, documentMimes...), "image/gif", "video/mp4", "video/webm", "video/quicktime"),
	UploadAvatar:     {"image/jpeg", "image/png"},
}

// DetectMimeType sniffs the content and returns the detected MIME type
// (without parameters) when it, or one of its parents, is on the allow-list.
func DetectMimeType(reader io.Reader, kind UploadKind) (string, error) {
	mtype, err := mimetype.DetectReader(reader)
	if err != nil {
		return "", err
	}

	detected := strings.SplitN(mtype.String(), ";", 2)[0]
	for m := mtype; m != nil; m = m.Parent() {
		for _, allowed := range allowedMimes[kind] {
			if m.Is(allowed) {
				return detected, nil
			}
		}
	}
	return detected, ErrFileTypeForbidden
}

// ExtensionFor returns the canonical file extension of a sniffed MIME type,
// or ".bin" when the type has none.
func ExtensionFor(mime string) string {
	if m := mimetype.Lookup(mime); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return ".bin"
}

// ContentTypeByExt maps a stored file name to the Content-Type sent on download.
func ContentTypeByExt(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return MimePDF
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return MimeXLSX
	case ".txt":
		return "text/plain"
	case ".zip":
		return MimeZip
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	case ".mov":
		return "video/quicktime"
	default:
		return MimeOctetStream
	}
}

func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}

func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeVideo)
}

// SanitizeFileName keeps the base name and replaces characters that are
// awkward in storage keys and Content-Disposition headers.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	replacer := strings.NewReplacer(" ", "_", "\"", "", "'", "", ";", "", ",", "")
	name = replacer.Replace(name)
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
