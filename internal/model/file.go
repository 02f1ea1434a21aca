package model

import "time"

// FileRecord is a file's metadata row. The payload itself never lives here;
// it is stored in the object bucket under the record's ID.
type FileRecord struct {
	ID        string
	FileName  string
	Ext       string
	OwnerID   string
	FolderID  string
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FileDTO is the caller-facing shape of a file, used for both requests and responses.
// FileData is write-only: it is accepted on create/update and always nil on the way out.
type FileDTO struct {
	ID        string    `json:"id,omitempty"`
	FileName  string    `json:"fileName"`
	Ext       string    `json:"ext"`
	OwnerID   string    `json:"ownerId,omitempty"`
	FolderID  string    `json:"folderId,omitempty"`
	IsDeleted bool      `json:"isDeleted"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	FileData  *string   `json:"fileData,omitempty"`
}

// HasData reports whether the request carries a non-empty payload.
func (d *FileDTO) HasData() bool {
	return d != nil && d.FileData != nil && *d.FileData != ""
}

// Paginating selects a page of results. PageNumber is zero-based.
type Paginating struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// FileFilterRequest describes a filtered, paginated listing of files.
// Empty fields are not applied. Soft-deleted files are never listed.
type FileFilterRequest struct {
	Name           string     `json:"name,omitempty"`
	Ext            string     `json:"ext,omitempty"`
	OwnerID        string     `json:"ownerId,omitempty"`
	FolderID       string     `json:"folderId,omitempty"`
	UpdatedFrom    *time.Time `json:"updatedFrom,omitempty"`
	UpdatedTo      *time.Time `json:"updatedTo,omitempty"`
	SortOrder      string     `json:"sortOrder,omitempty"`
	Paginating     Paginating `json:"paginating"`
}

// PageInfo is returned alongside filtered results.
type PageInfo struct {
	Total      int `json:"total"`
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
}

// FileResponse is the envelope returned by every file operation.
type FileResponse struct {
	Success      bool      `json:"success"`
	Message      string    `json:"message"`
	FileObjPages []FileDTO `json:"fileObjPages,omitempty"`
	Page         *PageInfo `json:"page,omitempty"`
}
