package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/http/handlers/common"
	"github.com/ignatzorin/testhub-backend/internal/models"
	"github.com/ignatzorin/testhub-backend/internal/repository"
	"github.com/ignatzorin/testhub-backend/internal/storage"
)

type ArchiveHandler struct {
	archives *repository.ArchiveRepository
	storage  *storage.ArchiveStorage
}

// NewArchiveHandler создаёт новый хэндлер.
func NewArchiveHandler(archives *repository.ArchiveRepository, archiveStorage *storage.ArchiveStorage) *ArchiveHandler {
	return &ArchiveHandler{archives: archives, storage: archiveStorage}
}

// UploadArchive обрабатывает POST /archives.
// Принимает multipart-файл, проверяет сигнатуру и сохраняет метаданные.
func (h *ArchiveHandler) UploadArchive(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.RespondBadRequest(c, "файл обязателен (multipart-поле file)")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		common.RespondBadRequest(c, "не удалось прочитать файл")
		return
	}
	defer f.Close()

	relativePath, size, mimeType, err := h.storage.Save(c.Request.Context(), userID, fileHeader.Filename, f)
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	archive := &models.ArchiveFile{
		ID:       uuid.New(),
		UserID:   userID,
		FilePath: relativePath,
		FileType: mimeType,
		FileSize: size,
	}
	if err := h.archives.Create(c.Request.Context(), archive); err != nil {
		// Метаданные не сохранились, файл на диске не нужен
		_ = h.storage.Delete(c.Request.Context(), relativePath)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, archive)
}

// DownloadArchive обрабатывает GET /archives/:id.
func (h *ArchiveHandler) DownloadArchive(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, err.Error())
		return
	}
	archiveID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	archive, err := h.archives.GetByID(c.Request.Context(), archiveID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	role, _ := common.CurrentUserRole(c)
	if archive.UserID != userID && role == models.RoleCustomer {
		common.RespondForbidden(c, "")
		return
	}

	reader, err := h.storage.Open(c.Request.Context(), archive.FilePath)
	if err != nil {
		_ = c.Error(err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", archive.FileType)
	c.Header("Content-Disposition", "attachment")
	c.DataFromReader(http.StatusOK, archive.FileSize, archive.FileType, reader, nil)
}
