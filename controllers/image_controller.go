package controllers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"nutrition-tracker/services"

	"github.com/gin-gonic/gin"
)

const (
	msgKeyNotConfigured = "Vision API key is not configured or invalid. Please set OPENAI_API_KEY."
	msgRateLimited      = "Vision API rate limit exceeded. Please try again later."
)

type ImageController struct {
	Recognizer services.FoodRecognizer
	Store      services.ImageStore
}

func NewImageController(rec services.FoodRecognizer, store services.ImageStore) *ImageController {
	return &ImageController{Recognizer: rec, Store: store}
}

// Analyze handles POST /api/image/analyze with a multipart "file" field and
// returns the recognizer's JSON array verbatim.
func (h *ImageController) Analyze(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation failed", map[string]string{"file": "is required"})
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if err := services.ValidateImage(fh.Size, contentType); err != nil {
		respondError(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, services.MaxImageSize+1))
	if err != nil {
		respondError(c, err)
		return
	}

	if h.Store != nil {
		if ref, err := h.Store.Save(c.Request.Context(), data, contentType, fh.Filename); err != nil {
			slog.Warn("failed to store uploaded image", "filename", fh.Filename, "error", err)
		} else {
			c.Header("X-Image-Ref", ref)
		}
	}

	out, err := h.Recognizer.Recognize(c.Request.Context(), data, contentType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotConfigured):
			abortWithError(c, http.StatusBadRequest, msgKeyNotConfigured, nil)
		case errors.Is(err, services.ErrRateLimited):
			abortWithError(c, http.StatusTooManyRequests, msgRateLimited, nil)
		default:
			slog.Error("image analysis failed", "error", err)
			abortWithError(c, http.StatusInternalServerError, "Error analyzing image", nil)
		}
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(out))
}
