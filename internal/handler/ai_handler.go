package handler

import (
	"io"
	"net/http"
	"time"

	"stocky-api/internal/apperror"
	"stocky-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxImageSize = 5 << 20

type AIHandler struct {
	service service.AIService
}

func NewAIHandler(s service.AIService) *AIHandler {
	return &AIHandler{service: s}
}

type SuggestPriceRequest struct {
	OriginalPrice int64     `json:"original_price"`
	ExpiryDate    time.Time `json:"expiry_date"`
}

// AnalyzeImage takes a multipart "image" field (JPEG or PNG, up to 5MB)
// POST /api/ai/analyze-image
func (h *AIHandler) AnalyzeImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return apperror.BadRequest("image file is required")
	}
	if file.Size > maxImageSize {
		return apperror.New(fiber.StatusRequestEntityTooLarge, "Image must be 5MB or smaller")
	}

	f, err := file.Open()
	if err != nil {
		return apperror.BadRequest("Could not read image")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageSize+1))
	if err != nil {
		return apperror.BadRequest("Could not read image")
	}
	if len(data) > maxImageSize {
		return apperror.New(fiber.StatusRequestEntityTooLarge, "Image must be 5MB or smaller")
	}

	switch http.DetectContentType(data) {
	case "image/jpeg", "image/png":
	default:
		return apperror.BadRequest("Only JPEG and PNG images are supported")
	}

	result, err := h.service.AnalyzeImage(c.UserContext(), file.Filename, data)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(result)
}

// POST /api/ai/suggest-price
func (h *AIHandler) SuggestPrice(c *fiber.Ctx) error {
	var req SuggestPriceRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	suggestion, err := h.service.SuggestPrice(req.OriginalPrice, req.ExpiryDate)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(suggestion)
}
