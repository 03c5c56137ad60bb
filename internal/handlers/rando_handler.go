package handlers

import (
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/randoapp/rando-service/internal/apperr"
	"github.com/randoapp/rando-service/internal/auth"
	"github.com/randoapp/rando-service/internal/model"
	"github.com/randoapp/rando-service/internal/pipeline"
	"github.com/randoapp/rando-service/internal/repository"
)

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

type Handler struct {
	pipe        *pipeline.Orchestrator
	repo        *repository.RandoRepo
	log         *zap.SugaredLogger
	maxUploadMB int
}

func NewHandler(pipe *pipeline.Orchestrator, repo *repository.RandoRepo, log *zap.SugaredLogger, maxUploadMB int) *Handler {
	return &Handler{pipe: pipe, repo: repo, log: log, maxUploadMB: maxUploadMB}
}

// PostImage handles POST /image: multipart "image" plus form
// "latitude"/"longitude". The file lands in a temp path which the
// pipeline takes ownership of; on a pipeline error before stage-upload
// the temp file is removed here.
func (h *Handler) PostImage(c *fiber.Ctx) error {
	owner, ok := auth.OwnerFromCtx(c)
	if !ok {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized")
	}
	reqID := uuid.NewString()
	log := h.log.With("req", reqID, "owner", owner.Email)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		// pipeline owns the missing-image contract; hand it an empty path
		return h.runPipeline(c, log, owner, "", h.parseLocation(c))
	}
	if err := h.validateUpload(fileHeader); err != nil {
		log.Warnw("upload rejected", "err", err)
		return jsonError(c, fiber.StatusBadRequest, err.Error())
	}

	tmpPath := filepath.Join(os.TempDir(), "rando-upload-"+reqID)
	if err := c.SaveFile(fileHeader, tmpPath); err != nil {
		log.Errorw("cannot save inbound file", "err", err)
		return jsonError(c, fiber.StatusInternalServerError, "cannot accept upload")
	}

	return h.runPipeline(c, log, owner, tmpPath, h.parseLocation(c))
}

func (h *Handler) runPipeline(c *fiber.Ctx, log *zap.SugaredLogger, owner model.Owner, tmpPath string, loc *model.Location) error {
	resp, err := h.pipe.SaveImage(c.Context(), owner, tmpPath, loc)
	if err != nil {
		if tmpPath != "" {
			// no-op once the pipeline already moved the file into staging
			_ = os.Remove(tmpPath)
		}
		status := apperr.HTTPStatus(err)
		log.Warnw("post image failed", "status", status, "err", err)
		if status == fiber.StatusBadRequest {
			return jsonError(c, status, "image or location is missing")
		}
		return jsonError(c, status, "internal error")
	}
	log.Infow("post image done", "randoId", resp.RandoID)
	return c.Status(fiber.StatusOK).JSON(resp)
}

func (h *Handler) parseLocation(c *fiber.Ctx) *model.Location {
	latStr := strings.TrimSpace(c.FormValue("latitude"))
	lngStr := strings.TrimSpace(c.FormValue("longitude"))
	if latStr == "" || lngStr == "" {
		return nil
	}
	lat, err1 := strconv.ParseFloat(latStr, 64)
	lng, err2 := strconv.ParseFloat(lngStr, 64)
	if err1 != nil || err2 != nil {
		return nil
	}
	return &model.Location{Latitude: lat, Longitude: lng}
}

func (h *Handler) validateUpload(fh *multipart.FileHeader) error {
	if fh.Size == 0 || fh.Size > int64(h.maxUploadMB)*1024*1024 {
		return fiber.NewError(fiber.StatusBadRequest, "file size not allowed")
	}
	ct := fh.Header.Get("Content-Type")
	if ct != "" && !allowedTypes[ct] {
		return fiber.NewError(fiber.StatusBadRequest, "invalid content type")
	}
	return nil
}

// Report handles POST /report/:id.
func (h *Handler) Report(c *fiber.Ctx) error {
	return h.incCounter(c, h.repo.IncReport)
}

// BonAppetit handles POST /bonappetit/:id.
func (h *Handler) BonAppetit(c *fiber.Ctx) error {
	return h.incCounter(c, h.repo.IncBonAppetit)
}

func (h *Handler) incCounter(c *fiber.Ctx, inc func(ctx context.Context, randoID string) error) error {
	id := c.Params("id")
	if id == "" {
		return jsonError(c, fiber.StatusBadRequest, "rando id is missing")
	}
	if err := inc(c.Context(), id); err != nil {
		status := apperr.HTTPStatus(err)
		h.log.Warnw("counter update failed", "randoId", id, "err", err)
		if status == fiber.StatusNotFound {
			return jsonError(c, status, "rando not found")
		}
		return jsonError(c, status, "internal error")
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
