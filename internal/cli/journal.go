package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ui/tui"
)

func journalCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "journal",
		Short: "Local record of issued, sent and paid invoices",
	}

	c.AddCommand(journalListCmd(opts), journalShowCmd(opts))
	return c
}

func journalListCmd(opts *rootOptions) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List journal entries, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			refs, err := opts.journal().List()
			if err != nil {
				return err
			}
			if refs == nil {
				refs = []domain.JournalRef{}
			}

			return out.print(cmd.OutOrStdout(), refs, func() string {
				if len(refs) == 0 {
					return "(journal is empty)"
				}
				return tui.RenderJournal(refs)
			})
		},
	}

	out.register(cmd)
	return cmd
}

func journalShowCmd(opts *rootOptions) *cobra.Command {
	out := outputFlags{format: "json"}

	cmd := &cobra.Command{
		Use:   "show <entry-id>",
		Short: "Print one journal entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := opts.journal()
			refs, err := store.List()
			if err != nil {
				return err
			}

			for _, ref := range refs {
				if ref.ID != args[0] {
					continue
				}
				entry, err := store.Entry(ref)
				if err != nil {
					return err
				}
				return out.print(cmd.OutOrStdout(), entry, nil)
			}
			return &domain.OpError{
				Op:   "cli.journal.show",
				Kind: domain.KindNotFound,
				Err:  fmt.Errorf("journal entry %q: %w", args[0], domain.ErrNotFound),
			}
		},
	}

	cmd.Flags().StringVarP(&out.query, "query", "q", "", "JSONPath applied to the entry")
	return cmd
}
