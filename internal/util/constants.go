package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// Storage key prefixes per uploaded resource type.
const (
	DirAssignments = "assignments"
	DirMaterials   = "materials"
	DirSubmissions = "submissions"
	DirAvatars     = "avatars"
)

const (
	MimeVideo       = "video/"
	MimeImage       = "image/"
	MimePDF         = "application/pdf"
	MimeOctetStream = "application/octet-stream"
	MimeZip         = "application/zip"
	MimeXLSX        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	AllowedVideoExtensions = []string{".mp4", ".webm", ".mov"}
)
