package ports

import "github.com/michalnik/money-collector/internal/domain"

// DraftLoader reads invoice drafts prepared ahead of time. The subject is
// chosen by the caller.
type DraftLoader interface {
	LoadDraft(path string) (domain.InvoiceDraft, error)
}
