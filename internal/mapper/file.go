// Package mapper converts domain records to their external representation.
package mapper

import "fileapi/internal/model"

// FileMapper translates file records to DTOs.
type FileMapper interface {
	ToDTO(rec *model.FileRecord) model.FileDTO
}

type fileMapper struct{}

// NewFileMapper returns the default FileMapper.
func NewFileMapper() FileMapper {
	return fileMapper{}
}

// ToDTO copies the record field by field. FileData is never populated.
func (fileMapper) ToDTO(rec *model.FileRecord) model.FileDTO {
	if rec == nil {
		return model.FileDTO{}
	}
	return model.FileDTO{
		ID:        rec.ID,
		FileName:  rec.FileName,
		Ext:       rec.Ext,
		OwnerID:   rec.OwnerID,
		FolderID:  rec.FolderID,
		IsDeleted: rec.IsDeleted,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}
