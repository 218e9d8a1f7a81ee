package handlers

import (
	"github.com/cliptide/backend/internal/community"
	"github.com/cliptide/backend/internal/lists"
	"github.com/cliptide/backend/internal/storage"
	"gorm.io/gorm"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	db          *gorm.DB
	communities *community.Service
	lists       *lists.Service
	uploader    *storage.S3Uploader
}

// NewHandlers creates a new handlers instance
func NewHandlers(db *gorm.DB, communities *community.Service, listSvc *lists.Service) *Handlers {
	return &Handlers{
		db:          db,
		communities: communities,
		lists:       listSvc,
	}
}

// SetUploader sets the S3 uploader for media endpoints
func (h *Handlers) SetUploader(uploader *storage.S3Uploader) {
	h.uploader = uploader
}
