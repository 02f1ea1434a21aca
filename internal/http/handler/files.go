package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fileapi/internal/model"
	"fileapi/internal/service"
)

// fileID validates the :id path parameter.
func fileID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// badRef names the first ownerId/folderId value that is set but is not a UUID.
func badRef(ownerID, folderID string) string {
	if ownerID != "" {
		if _, err := uuid.Parse(ownerID); err != nil {
			return "ownerId"
		}
	}
	if folderID != "" {
		if _, err := uuid.Parse(folderID); err != nil {
			return "folderId"
		}
	}
	return ""
}

// CreateFile godoc
//
// @Summary Create a file record, storing fileData in the bucket when present
// @Tags files
// @Accept json
// @Produce json
// @Param file body model.FileDTO true "File"
// @Success 201 {object} model.FileResponse
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /files [post]
func CreateFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.FileDTO
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if field := badRef(req.OwnerID, req.FolderID); field != "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", field+" must be a UUID")
		}
		res, err := svc.Create(c.UserContext(), &req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// UpdateFile godoc
//
// @Summary Update a file's fields and optionally replace its data
// @Tags files
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Param file body model.FileDTO true "Fields to change"
// @Success 200 {object} model.FileResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /files/{id} [put]
func UpdateFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var req model.FileDTO
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		if field := badRef(req.OwnerID, req.FolderID); field != "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", field+" must be a UUID")
		}
		res, err := svc.Update(c.UserContext(), id, &req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// FilterFiles godoc
//
// @Summary Filter files with pagination
// @Tags files
// @Accept json
// @Produce json
// @Param filter body model.FileFilterRequest true "Filter"
// @Success 200 {object} model.FileResponse
// @Failure 400 {object} errorPayload
// @Router /files/filter [post]
func FilterFiles(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.FileFilterRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
			}
		}
		if field := badRef(req.OwnerID, req.FolderID); field != "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", field+" must be a UUID")
		}
		if req.UpdatedFrom != nil && req.UpdatedTo != nil && req.UpdatedFrom.After(*req.UpdatedTo) {
			return writeError(c, fiber.StatusBadRequest, "INVALID_RANGE", "updatedFrom is after updatedTo")
		}
		res, err := svc.Filter(c.UserContext(), &req)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// GetFile godoc
//
// @Summary Get a file record
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} model.FileResponse
// @Failure 404 {object} errorPayload
// @Router /files/{id} [get]
func GetFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DownloadFile godoc
//
// @Summary Download a file's data
// @Tags files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Router /files/{id}/data [get]
func DownloadFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		rc, info, err := svc.Download(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		ct := info.ContentType
		if ct == "" {
			ct = fiber.MIMEOctetStream
		}
		c.Set(fiber.HeaderContentType, ct)
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, info.ETag)
		}
		size := int(info.Size)
		if size <= 0 {
			size = -1
		}
		// fasthttp closes rc once the body has been written.
		return c.SendStream(rc, size)
	}
}

// DeleteFile godoc
//
// @Summary Soft-delete a file
// @Description Repeated calls succeed with an informational message and write nothing.
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} model.FileResponse
// @Failure 404 {object} errorPayload
// @Router /files/{id} [delete]
func DeleteFile(svc service.FileService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := fileID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		res, err := svc.SetDeletedStatus(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
