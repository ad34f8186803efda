package handler

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"finmate/internal/middleware"
	"finmate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserHandler serves profile reads/updates and avatar upload.
type UserHandler struct {
	DB         *gorm.DB
	UploadDir  string
	PublicBase string
	MaxSizeMB  int
}

func NewUserHandler(db *gorm.DB, uploadDir, publicBase string, maxSizeMB int) *UserHandler {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &UserHandler{
		DB:         db,
		UploadDir:  uploadDir,
		PublicBase: publicBase,
		MaxSizeMB:  maxSizeMB,
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
			"avatar_url":   user.AvatarURL,
			"created_at":   user.CreatedAt,
		},
	})
}

type updateProfileReq struct {
	DisplayName string `json:"display_name" binding:"max=64"`
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)

	if err := h.DB.Model(user).Update("display_name", req.DisplayName).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update profile failed")
		return
	}
	user.DisplayName = req.DisplayName

	util.Success(c, util.Response{
		"user": gin.H{
			"id":           user.ID,
			"username":     user.Username,
			"display_name": user.DisplayName,
			"avatar_url":   user.AvatarURL,
		},
	})
}

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// UpdateAvatar accepts a multipart "avatar" image and stores it under the
// upload dir with a uuid filename.
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "avatar file is required")
		return
	}

	if file.Size > int64(h.MaxSizeMB)<<20 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam,
			fmt.Sprintf("avatar must be under %d MB", h.MaxSizeMB))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unsupported image type")
		return
	}

	name := uuid.New().String() + ext
	dst := filepath.Join(h.UploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save avatar failed")
		return
	}

	avatarURL := strings.TrimRight(h.PublicBase, "/") + "/" + name
	if err := h.DB.Model(user).Update("avatar_url", avatarURL).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update avatar failed")
		return
	}
	user.AvatarURL = avatarURL

	util.Success(c, util.Response{
		"avatar_url": avatarURL,
	})
}
