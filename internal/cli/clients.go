package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
	"github.com/michalnik/money-collector/internal/ui/tui"
)

func clientsCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "clients",
		Short: "Inspect Fakturoid clients",
	}

	c.AddCommand(clientsListCmd(opts))
	return c
}

func clientsListCmd(opts *rootOptions) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.loadApp(cmd, false)
			if err != nil {
				return err
			}

			subjects, err := a.api.ListSubjects(cmd.Context())
			if err != nil {
				return err
			}
			if subjects == nil {
				subjects = []domain.Subject{}
			}

			return out.print(cmd.OutOrStdout(), subjects, func() string {
				if len(subjects) == 0 {
					return "(no clients found)"
				}
				return tui.RenderSubjects(subjects)
			})
		},
	}

	out.register(cmd)
	return cmd
}

// findSubject looks a client up by id.
func findSubject(ctx context.Context, api ports.Invoicing, id int64) (domain.Subject, error) {
	subjects, err := api.ListSubjects(ctx)
	if err != nil {
		return domain.Subject{}, err
	}
	for _, s := range subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Subject{}, &domain.OpError{
		Op:   "cli.find_subject",
		Kind: domain.KindNotFound,
		Err:  fmt.Errorf("client %d: %w", id, domain.ErrNotFound),
	}
}
