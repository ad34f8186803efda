package handler

import (
	"net/http"
	"path/filepath"
	"strings"

	"finmate/internal/middleware"
	"finmate/internal/provider"
	"finmate/internal/util"

	"github.com/gin-gonic/gin"
)

// ReceiptHandler forwards receipt images to the OCR provider.
// A provider failure is surfaced as a degraded response and never touches
// stored data.
type ReceiptHandler struct {
	OCR       provider.OCRClient
	MaxSizeMB int
}

func NewReceiptHandler(ocr provider.OCRClient, maxSizeMB int) *ReceiptHandler {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &ReceiptHandler{OCR: ocr, MaxSizeMB: maxSizeMB}
}

// Scan accepts a multipart "receipt" image and returns the extracted text.
func (h *ReceiptHandler) Scan(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "receipt file is required")
		return
	}
	if file.Size > int64(h.MaxSizeMB)<<20 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "receipt image too large")
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExt[ext] {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unsupported image type")
		return
	}

	f, err := file.Open()
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "read upload failed")
		return
	}
	defer f.Close()

	result, err := h.OCR.Scan(c.Request.Context(), file.Filename, f)
	if err != nil {
		util.Error(c, http.StatusBadGateway, util.CodeProviderErr, "receipt scan unavailable, try again later")
		return
	}

	util.Success(c, util.Response{
		"text":   result.Text,
		"amount": result.Amount,
		"date":   result.Date,
	})
}
