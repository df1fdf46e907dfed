package models

import (
	"time"
)

type DocumentStatus string

const (
	StatusCurrent  DocumentStatus = "CURRENT"
	StatusCanceled DocumentStatus = "CANCELED"
	StatusReplaced DocumentStatus = "REPLACED"
)

// Allowed status transitions
// The table is the single source of truth: a pair not listed here is rejected,
// including self transitions and CANCELED <-> REPLACED
var allowedTransitions = map[DocumentStatus][]DocumentStatus{
	StatusCurrent:  {StatusCanceled, StatusReplaced},
	StatusCanceled: {StatusCurrent},
	StatusReplaced: {StatusCurrent},
}

func (s DocumentStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransition reports whether the status change is allowed by the table
func CanTransition(from, to DocumentStatus) bool {
	for _, target := range allowedTransitions[from] {
		if target == to {
			return true
		}
	}
	return false
}

type Document struct {
	ID          int64
	CreatedAt   time.Time
	ModifiedAt  time.Time
	FullName    string
	Designation string
	OKPD2       string
	OKS         string
	AdoptedAt   *time.Time
	EffectiveAt *time.Time
	Content     string
	Status      DocumentStatus
}

// DocumentFile is the single attachment stored for a document
type DocumentFile struct {
	DocumentID  int64
	Filename    string
	ContentType string
	Data        []byte
}
