package service

import (
	"context"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"Lee_Microblog/internal/metrics"
	"Lee_Microblog/internal/model"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/repository/database"
	"Lee_Microblog/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxUploadBytes = 16 << 20
	orphanBatch           = 500
)

var DefaultAllowedTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

// 客户端常见的非标准写法
var mimeAliases = map[string]string{
	"image/jpg":   "image/jpeg",
	"image/pjpeg": "image/jpeg",
	"image/x-png": "image/png",
}

type MediaService struct {
	repo     *database.AttachmentRepository
	blobs    storage.BlobStore
	maxBytes int64
	allowed  []string
	metrics  *metrics.Metrics
}

func NewMediaService(repo *database.AttachmentRepository, blobs storage.BlobStore, maxBytes int64, allowed []string, m *metrics.Metrics) *MediaService {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if len(allowed) == 0 {
		allowed = DefaultAllowedTypes
	}
	return &MediaService{repo: repo, blobs: blobs, maxBytes: maxBytes, allowed: allowed, metrics: m}
}

func (s *MediaService) MaxBytes() int64 { return s.maxBytes }

// Upload 校验并保存图片。大小校验在任何存储写入之前
func (s *MediaService) Upload(ctx context.Context, uploaderID uint64, data []byte, declaredMime, fileName string) (*model.Attachment, error) {
	att, err := s.upload(ctx, uploaderID, data, declaredMime, fileName)
	s.metrics.Upload(err)
	return att, err
}

func (s *MediaService) upload(ctx context.Context, uploaderID uint64, data []byte, declaredMime, fileName string) (*model.Attachment, error) {
	if uploaderID == 0 {
		return nil, pkg.ErrInvalidID
	}
	if len(data) == 0 {
		return nil, pkg.ErrEmptyUpload
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkg.ErrUploadTooLarge
	}

	detected := mimetype.Detect(data)
	if !s.isAllowed(detected) {
		return nil, pkg.ErrUnsupportedMedia
	}
	if declared := normalizeMime(declaredMime); declared != "" && declared != "application/octet-stream" && !detected.Is(declared) {
		return nil, pkg.ErrUnsupportedMedia
	}

	key := uuid.NewString() + detected.Extension()
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return nil, err
	}
	att := &model.Attachment{
		UploaderID: uploaderID,
		StorageKey: key,
		URL:        s.blobs.URL(key),
		MimeType:   detected.String(),
		Size:       int64(len(data)),
		FileName:   cleanFileName(fileName),
	}
	if err := s.repo.Create(ctx, att); err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			log.Warn().Err(derr).Str("key", key).Msg("remove blob after failed insert")
		}
		return nil, err
	}
	log.Debug().Uint64("attachment", att.ID).Str("mime", att.MimeType).Int64("size", att.Size).Msg("media uploaded")
	return att, nil
}

func (s *MediaService) isAllowed(detected *mimetype.MIME) bool {
	for _, t := range s.allowed {
		if detected.Is(t) {
			return true
		}
	}
	return false
}

func normalizeMime(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if parsed, _, err := mime.ParseMediaType(v); err == nil {
		v = parsed
	}
	v = strings.ToLower(v)
	if alias, ok := mimeAliases[v]; ok {
		return alias
	}
	return v
}

func cleanFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	if r := []rune(name); len(r) > 255 {
		name = string(r[:255])
	}
	return name
}

// PurgeOrphans 删除超过 olderThan 仍未绑定推文的附件及其文件
func (s *MediaService) PurgeOrphans(ctx context.Context, olderThan time.Duration) (int, error) {
	before := time.Now().Add(-olderThan)
	var purged int
	for {
		list, err := s.repo.ListOrphans(ctx, before, orphanBatch)
		if err != nil {
			return purged, err
		}
		for _, a := range list {
			ok, err := s.repo.DeleteOrphan(ctx, a.ID)
			if err != nil {
				return purged, err
			}
			// 期间被绑定到推文的跳过
			if !ok {
				continue
			}
			purged++
			if err = s.blobs.Delete(ctx, a.StorageKey); err != nil {
				log.Warn().Err(err).Str("key", a.StorageKey).Msg("remove orphan blob failed")
			}
		}
		if len(list) < orphanBatch {
			return purged, nil
		}
	}
}
