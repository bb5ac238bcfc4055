package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"mindagrow_backend/internal/config"
	"mindagrow_backend/internal/util"
	"mindagrow_backend/pkg/logger"
	"mindagrow_backend/pkg/monitoring"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const avatarSize = 256

// StoredFile describes an accepted upload.
type StoredFile struct {
	Key             string
	Name            string
	Mime            string
	Size            int64
	DurationSeconds float64
}

type UploadService struct {
	Storage *StorageService
	Cfg     *config.UploadConfig
}

func NewUploadService(storage *StorageService, cfg *config.UploadConfig) *UploadService {
	return &UploadService{Storage: storage, Cfg: cfg}
}

func (s *UploadService) maxBytes(kind util.UploadKind) int64 {
	var mb int
	switch kind {
	case util.UploadAssignment:
		mb = s.Cfg.MaxAssignmentMB
	case util.UploadSubmission:
		mb = s.Cfg.MaxSubmissionMB
	case util.UploadMaterial:
		mb = s.Cfg.MaxMaterialMB
	case util.UploadAvatar:
		mb = s.Cfg.MaxAvatarMB
	}
	if mb <= 0 {
		mb = 10
	}
	return int64(mb) << 20
}

func dirFor(kind util.UploadKind) string {
	switch kind {
	case util.UploadAssignment:
		return util.DirAssignments
	case util.UploadSubmission:
		return util.DirSubmissions
	case util.UploadMaterial:
		return util.DirMaterials
	default:
		return util.DirAvatars
	}
}

// open checks size and content type, leaving the file rewound for reading.
func (s *UploadService) open(fh *multipart.FileHeader, kind util.UploadKind) (multipart.File, string, error) {
	if fh == nil {
		return nil, "", util.ErrFileRequired
	}
	if fh.Size > s.maxBytes(kind) {
		return nil, "", fmt.Errorf("%w: limit is %d MB", util.ErrFileTooLarge, s.maxBytes(kind)>>20)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, "", err
	}
	mime, err := util.DetectMimeType(f, kind)
	if err != nil {
		f.Close()
		return nil, "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, "", err
	}
	return f, mime, nil
}

// Save validates and stores an upload under the directory of its kind.
// Material videos are probed for their duration on a best-effort basis.
func (s *UploadService) Save(ctx context.Context, fh *multipart.FileHeader, kind util.UploadKind) (*StoredFile, error) {
	f, mime, err := s.open(fh, kind)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	name := util.SanitizeFileName(fh.Filename)
	stored := &StoredFile{
		Key:  path.Join(dirFor(kind), uuid.NewString()+util.ExtensionFor(mime)),
		Name: name,
		Mime: mime,
		Size: fh.Size,
	}

	if kind == util.UploadMaterial && util.IsVideo(mime) {
		err = s.saveVideo(ctx, f, stored)
	} else {
		_, err = s.Storage.Upload(ctx, stored.Key, f, fh.Size, mime)
	}
	if err != nil {
		return nil, err
	}

	monitoring.UploadBytes.WithLabelValues(string(kind)).Add(float64(fh.Size))
	return stored, nil
}

func (s *UploadService) saveVideo(ctx context.Context, src io.Reader, stored *StoredFile) error {
	tmp, err := os.CreateTemp("", "mindagrow-video-*"+filepath.Ext(stored.Key))
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return err
	}
	tmp.Close()

	if d, err := util.ProbeDuration(tmp.Name()); err != nil {
		logger.Log.Warn("Video probe failed", zap.String("file", stored.Name), zap.Error(err))
	} else {
		stored.DurationSeconds = d
	}

	_, err = s.Storage.UploadFile(ctx, stored.Key, tmp.Name(), stored.Mime)
	return err
}

// SaveAvatar resizes the image to fit within 256x256 before storing it.
func (s *UploadService) SaveAvatar(ctx context.Context, fh *multipart.FileHeader, userID uint) (*StoredFile, error) {
	f, mime, err := s.open(fh, util.UploadAvatar)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode image", util.ErrFileTypeForbidden)
	}
	img = fitAvatar(img)

	format, ext := imaging.JPEG, ".jpg"
	if mime == "image/png" {
		format, ext = imaging.PNG, ".png"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return nil, err
	}

	stored := &StoredFile{
		Key:  path.Join(util.DirAvatars, fmt.Sprintf("%d-%s%s", userID, uuid.NewString(), ext)),
		Name: util.SanitizeFileName(fh.Filename),
		Mime: mime,
		Size: int64(buf.Len()),
	}
	if _, err := s.Storage.Upload(ctx, stored.Key, &buf, stored.Size, mime); err != nil {
		return nil, err
	}
	monitoring.UploadBytes.WithLabelValues(string(util.UploadAvatar)).Add(float64(stored.Size))
	return stored, nil
}

// downloadMime prefers the type sniffed at upload over the client's file name.
func downloadMime(sniffed, name string) string {
	if sniffed != "" {
		return sniffed
	}
	return util.ContentTypeByExt(name)
}

func fitAvatar(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() <= avatarSize && b.Dy() <= avatarSize {
		return img
	}
	return imaging.Fit(img, avatarSize, avatarSize, imaging.Lanczos)
}
