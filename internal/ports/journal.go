package ports

import "github.com/michalnik/money-collector/internal/domain"

// Journal persists a local record of invoice actions.
type Journal interface {
	Record(entry domain.JournalEntry) (id string, err error)
	List() ([]domain.JournalRef, error)
}
