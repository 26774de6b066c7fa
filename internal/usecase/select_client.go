package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

type SelectClient struct {
	api    ports.Invoicing
	prompt ports.Prompter
}

func NewSelectClient(api ports.Invoicing, prompt ports.Prompter) *SelectClient {
	return &SelectClient{api: api, prompt: prompt}
}

// Execute lets the user pick one subject from a fuzzy list labelled "<id> - <name>".
func (uc *SelectClient) Execute(ctx context.Context) (domain.Subject, error) {
	subjects, err := uc.api.ListSubjects(ctx)
	if err != nil {
		return domain.Subject{}, err
	}
	if len(subjects) == 0 {
		return domain.Subject{}, &domain.OpError{Op: "usecase.select_client", Kind: domain.KindNotFound, Err: domain.ErrNoClients}
	}

	choices := make([]ports.Choice, 0, len(subjects))
	for _, s := range subjects {
		choices = append(choices, ports.Choice{Label: s.Label(), Value: s.ID})
	}
	sort.SliceStable(choices, func(i, j int) bool { return choices[i].Value < choices[j].Value })

	id, err := uc.prompt.Select("Choose your client for invoicing:", choices)
	if err != nil {
		return domain.Subject{}, err
	}
	for _, s := range subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Subject{}, &domain.OpError{
		Op:   "usecase.select_client",
		Kind: domain.KindNotFound,
		Err:  fmt.Errorf("subject %d: %w", id, domain.ErrNotFound),
	}
}
