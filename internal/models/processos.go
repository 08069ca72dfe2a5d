package models

import (
	"strconv"
	"time"
)

// Case is a tracked legal matter ("processo").
type Case struct {
	ID        int64     `json:"-" db:"id"`
	Class     string    `json:"classe" db:"classe"`
	Number    int64     `json:"numero" db:"numero"`
	Origin    string    `json:"orgao_origem" db:"orgao_origem"`
	Code      string    `json:"codigo" db:"codigo"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CaseCode collapses the business key into the unique case code, e.g. ARE + 123456 = ARE123456.
func CaseCode(class string, number int64) string {
	return class + strconv.FormatInt(number, 10)
}

type CreateCaseRequest struct {
	Class  string `json:"classe"`
	Number *int64 `json:"numero"`
	Origin string `json:"orgao_origem"`
}

type CreateCaseResponse struct {
	Status string `json:"status"`
	Class  string `json:"classe"`
	Number int64  `json:"numero"`
	Code   string `json:"codigo"`
}

type CaseDetail struct {
	Class     string            `json:"classe"`
	Number    int64             `json:"numero"`
	Origin    string            `json:"orgao_origem"`
	Code      string            `json:"codigo"`
	Documents []DocumentSummary `json:"documentos"`
}

type CaseDetailResponse struct {
	Case CaseDetail `json:"processo"`
}
