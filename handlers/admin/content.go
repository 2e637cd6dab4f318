package admin

import (
	stderrors "errors"

	"github.com/gofiber/fiber/v2"

	"muslimlife/importer"
	"muslimlife/services"
	"muslimlife/utils"
)

type AddVideoRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=lecture recitation"`
	CategoryID string `json:"category_id" validate:"required,max=50"`
	VideoID    string `json:"video_id" validate:"required,max=64"`
}

type ImportPlaylistRequest struct {
	Kind       string `json:"kind" validate:"required,oneof=lecture recitation"`
	CategoryID string `json:"category_id" validate:"required,max=50"`
	PlaylistID string `json:"playlist_id" validate:"required,max=64"`
}

// maxSheetSize caps uploaded CSV sheets.
const maxSheetSize = 10 << 20

// AddVideo fetches one video's metadata and stores it
// POST /api/admin/content/videos
func (h *Handler) AddVideo(c *fiber.Ctx) error {
	var req AddVideoRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	result, err := h.Content.AddVideo(c.UserContext(), services.ContentKind(req.Kind), req.CategoryID, req.VideoID)
	if err != nil {
		return h.fail(c, err)
	}
	status := fiber.StatusCreated
	if result.Imported == 0 {
		status = fiber.StatusOK
	}
	return utils.JSONSuccess(c, status, fiber.Map{"result": result})
}

// ImportPlaylist stores every video of a playlist in order
// POST /api/admin/content/playlists
func (h *Handler) ImportPlaylist(c *fiber.Ctx) error {
	var req ImportPlaylistRequest
	if err := utils.ParseBody(c, &req); err != nil {
		return h.fail(c, err)
	}
	result, err := h.Content.ImportPlaylist(c.UserContext(), services.ContentKind(req.Kind), req.CategoryID, req.PlaylistID)
	if err != nil {
		return h.fail(c, err)
	}
	h.Log.Infow("playlist imported", "playlist_id", req.PlaylistID, "imported", result.Imported, "skipped", result.Skipped)
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"result": result})
}

// ImportSheet loads a CSV sheet uploaded as the "file" form field
// POST /api/admin/content/import/:kind
func (h *Handler) ImportSheet(c *fiber.Ctx) error {
	kind := importer.Kind(c.Params("kind"))
	if !kind.Valid() {
		return utils.JSONError(c, fiber.StatusBadRequest, "Unknown sheet kind")
	}

	header, err := c.FormFile("file")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "CSV file is required")
	}
	if header.Size > maxSheetSize {
		return utils.JSONError(c, fiber.StatusRequestEntityTooLarge, "CSV file is too large")
	}
	f, err := header.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer f.Close()

	result, err := h.Importer.Import(c.UserContext(), kind, f)
	if stderrors.Is(err, importer.ErrMalformed) {
		return utils.JSONError(c, fiber.StatusBadRequest, err.Error())
	}
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"result": result})
}
