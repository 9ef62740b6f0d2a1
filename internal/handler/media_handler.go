package handler

import (
	"errors"
	"io"
	"net/http"

	"Lee_Microblog/internal/middleware"
	"Lee_Microblog/internal/pkg"
	"Lee_Microblog/internal/service"

	"github.com/gin-gonic/gin"
)

const multipartOverhead = 1 << 20

type MediaHandler struct {
	svc *service.MediaService
}

func NewMediaHandler(svc *service.MediaService) *MediaHandler {
	return &MediaHandler{svc: svc}
}

// Upload 上传图片，表单字段 file
func (h *MediaHandler) Upload(c *gin.Context) {
	limit := h.svc.MaxBytes()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, pkg.ErrUploadTooLarge)
			return
		}
		fail(c, pkg.ErrEmptyUpload)
		return
	}
	if fh.Size > limit {
		fail(c, pkg.ErrUploadTooLarge)
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		fail(c, err)
		return
	}

	att, err := h.svc.Upload(c.Request.Context(), middleware.UserID(c), data, fh.Header.Get("Content-Type"), fh.Filename)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, gin.H{"media_id": att.ID, "url": att.URL})
}
