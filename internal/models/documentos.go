package models

import (
	"time"
)

type Document struct {
	ID          int64            `json:"id" db:"id"`
	CaseID      int64            `json:"processo_id" db:"processo_id"`
	Filename    string           `json:"filename" db:"filename"`
	ContentType string           `json:"content_type" db:"content_type"`
	FileSize    int64            `json:"file_size" db:"file_size"`
	Checksum    string           `json:"checksum" db:"checksum"`
	Path        string           `json:"-" db:"path"`
	Text        *string          `json:"texto" db:"texto"`
	Status      ExtractionStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

type DocumentSummary struct {
	ID        int64            `json:"id"`
	Filename  string           `json:"filename"`
	Checksum  string           `json:"checksum"`
	Status    ExtractionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		ID:        d.ID,
		Filename:  d.Filename,
		Checksum:  d.Checksum,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type UploadRequest struct {
	CaseCode    string
	File        []byte
	Filename    string
	ContentType string
}

type UploadResponse struct {
	Status     string `json:"status"`
	Checksum   string `json:"checksum"`
	DocumentID int64  `json:"documento_id"`
}

type StatusResponse struct {
	Status    ExtractionStatus `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
