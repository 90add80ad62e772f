package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ops-portal/internal/api/dto"
	"github.com/spec-kit/ops-portal/internal/domain"
	"github.com/spec-kit/ops-portal/internal/service"
)

// PhotosHandler exposes order photo endpoints.
type PhotosHandler struct {
	photos *service.OrderPhotoService
}

// NewPhotosHandler constructs handler.
func NewPhotosHandler(photos *service.OrderPhotoService) *PhotosHandler {
	return &PhotosHandler{photos: photos}
}

// Record handles POST /order-photos.
func (h *PhotosHandler) Record(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	var req dto.OrderPhotoRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	photo, err := h.photos.Record(c.UserContext(), actor, service.PhotoInput{
		OrderID:    req.OrderID,
		StorageKey: req.StorageKey,
		ImageURL:   req.ImageURL,
		LocationID: req.LocationID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": photoResponse(photo)})
}

// List handles GET /order-photos. export=csv downloads the same result.
func (h *PhotosHandler) List(c *fiber.Ctx) error {
	actor, err := subject(c)
	if err != nil {
		return err
	}
	search := service.PhotoSearch{
		DateAfter:  parseDate(c.Query("date_after")),
		DateBefore: parseDate(c.Query("date_before")),
		OrderID:    c.Query("order_id"),
		Uploader:   c.Query("uploaded_by"),
		Location:   c.Query("location"),
	}
	if c.Query("export") == "csv" {
		var buf bytes.Buffer
		if err := h.photos.ExportCSV(c.UserContext(), actor, search, &buf); err != nil {
			return err
		}
		return sendCSV(c, time.Now().Format("20060102")+"_KOT.csv", &buf)
	}
	photos, err := h.photos.List(c.UserContext(), actor, search)
	if err != nil {
		return err
	}
	items := make([]dto.OrderPhotoResponse, 0, len(photos))
	for i := range photos {
		items = append(items, photoResponse(&photos[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func photoResponse(p *domain.OrderPhoto) dto.OrderPhotoResponse {
	return dto.OrderPhotoResponse{
		ID:           p.ID,
		OrderID:      p.OrderID,
		StorageKey:   p.StorageKey,
		ImageURL:     p.ImageURL,
		UploadedByID: p.UploadedByID,
		UploaderName: p.UploaderName,
		LocationID:   p.LocationID,
		LocationName: p.LocationName,
		UploadedAt:   p.UploadedAt,
	}
}
