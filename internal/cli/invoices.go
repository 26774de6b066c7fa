package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/infra/yamldraft"
	"github.com/michalnik/money-collector/internal/ui/tui"
	"github.com/michalnik/money-collector/internal/usecase"
)

// statusUnpaid is a pseudo status: open, sent and overdue together.
const statusUnpaid = "unpaid"

func invoicesCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "invoices",
		Short: "List, issue, send and pay invoices",
	}

	c.AddCommand(
		invoicesListCmd(opts),
		invoicesIssueCmd(opts),
		invoicesSendCmd(opts),
		invoicesPayCmd(opts),
	)
	return c
}

func invoicesListCmd(opts *rootOptions) *cobra.Command {
	var (
		clientID int64
		status   string
		out      outputFlags
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoices of a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.loadApp(cmd, false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var invoices []domain.Invoice
			switch s := strings.ToLower(strings.TrimSpace(status)); s {
			case statusUnpaid:
				invoices, err = usecase.NewPayInvoices(a.api, a.journal, a.log).Candidates(ctx, clientID)
			case "":
				invoices, err = a.api.ListInvoices(ctx, clientID, "")
			default:
				st, perr := domain.ParseStatus(s)
				if perr != nil {
					return &domain.OpError{Op: "cli.invoices.list", Kind: domain.KindInvalidInput, Err: perr}
				}
				invoices, err = a.api.ListInvoices(ctx, clientID, st)
			}
			if err != nil {
				return err
			}
			if invoices == nil {
				invoices = []domain.Invoice{}
			}

			return out.print(cmd.OutOrStdout(), invoices, func() string {
				if len(invoices) == 0 {
					return "(no invoices found)"
				}
				return tui.RenderInvoices(invoices)
			})
		},
	}

	cmd.Flags().Int64VarP(&clientID, "client", "c", 0, "client (subject) id")
	cmd.Flags().StringVarP(&status, "status", "s", "", "open|sent|overdue|paid|cancelled|uncollectible|unpaid")
	_ = cmd.MarkFlagRequired("client")
	out.register(cmd)
	return cmd
}

func invoicesIssueCmd(opts *rootOptions) *cobra.Command {
	var (
		clientID int64
		from     string
		yes      bool
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue an invoice from a YAML draft",
		Example: "  collector invoices issue --client 42 --from march.yaml\n\n" +
			"  # march.yaml\n" +
			"  issued_on: 2024-03-31\n" +
			"  due: 14\n" +
			"  lines:\n" +
			"    - quantity: 160\n" +
			"      unit_name: hod\n" +
			"      unit_price: 1000",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.loadApp(cmd, false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			draft, err := yamldraft.NewLoader(a.cfg.Defaults).LoadDraft(from)
			if err != nil {
				return err
			}
			subject, err := findSubject(ctx, a.api, clientID)
			if err != nil {
				return err
			}
			draft.SubjectID = subject.ID

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Client: %s\n", subject.Label())
			fmt.Fprintln(w, tui.RenderDraft(draft))

			if !yes {
				ok, err := a.prompt.Confirm("Issue invoice?", true)
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(w, "Nothing was issued.")
					return nil
				}
			}

			inv, err := usecase.NewIssueInvoice(a.api, a.journal, a.log).Execute(ctx, subject, draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Invoice %s was issued.\n", inv.Number)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&clientID, "client", "c", 0, "client (subject) id")
	cmd.Flags().StringVar(&from, "from", "", "invoice draft (YAML)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "issue without asking")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func invoicesSendCmd(opts *rootOptions) *cobra.Command {
	var clientID int64

	cmd := &cobra.Command{
		Use:   "send <invoice-id>...",
		Short: "Mail open invoices to the client and mark them sent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			a, err := opts.loadApp(cmd, false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			subject, err := findSubject(ctx, a.api, clientID)
			if err != nil {
				return err
			}

			uc := usecase.NewSendInvoices(a.api, a.mailer, a.journal, a.cfg.Email, a.log)
			open, err := uc.Candidates(ctx, subject.ID)
			if err != nil {
				return err
			}

			selected, err := selectOpen(open, ids, subject.ID)
			if err != nil {
				return err
			}

			res, err := uc.Execute(ctx, subject, selected)
			for _, inv := range res.Sent {
				fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s was sent to %s.\n", inv.Number, subject.Email)
			}
			return err
		},
	}

	cmd.Flags().Int64VarP(&clientID, "client", "c", 0, "client (subject) id")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func invoicesPayCmd(opts *rootOptions) *cobra.Command {
	var paidOn string

	cmd := &cobra.Command{
		Use:   "pay <invoice-id>",
		Short: "Record a payment of an unpaid invoice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}

			day := time.Now()
			if strings.TrimSpace(paidOn) != "" {
				if day, err = domain.ParseDate(paidOn); err != nil {
					return err
				}
			}

			a, err := opts.loadApp(cmd, false)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			inv, err := a.api.GetInvoice(ctx, ids[0])
			if err != nil {
				return err
			}
			if !slices.Contains(domain.UnpaidStatuses(), inv.Status) {
				return &domain.OpError{
					Op:   "cli.invoices.pay",
					Kind: domain.KindInvalidInput,
					Err:  fmt.Errorf("invoice %s is %s: %w", inv.Number, inv.Status, domain.ErrInvalidInput),
				}
			}

			subject := domain.Subject{ID: inv.SubjectID, Name: inv.SubjectName}
			done, err := usecase.NewPayInvoices(a.api, a.journal, a.log).Execute(ctx, subject, []usecase.Payment{{Invoice: inv, PaidOn: day}})
			for _, p := range done {
				fmt.Fprintf(cmd.OutOrStdout(), "Invoice %s was paid at %s!\n", p.Invoice.Number, p.PaidOn.Format(domain.DateLayout))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&paidOn, "paid-on", "", "payment date YYYY-MM-DD (default today)")
	return cmd
}

// selectOpen picks the open invoices named by ids, once each and in the order given.
func selectOpen(open []domain.Invoice, ids []int64, subjectID int64) ([]domain.Invoice, error) {
	selected := make([]domain.Invoice, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		i := slices.IndexFunc(open, func(inv domain.Invoice) bool { return inv.ID == id })
		if i < 0 {
			return nil, &domain.OpError{
				Op:   "cli.invoices.send",
				Kind: domain.KindInvalidInput,
				Err:  fmt.Errorf("invoice %d is not an open invoice of client %d: %w", id, subjectID, domain.ErrInvalidInput),
			}
		}
		selected = append(selected, open[i])
	}
	return selected, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil || id <= 0 {
			return nil, &domain.OpError{
				Op:   "cli.parse_ids",
				Kind: domain.KindInvalidInput,
				Err:  fmt.Errorf("invalid invoice id %q: %w", a, domain.ErrInvalidInput),
			}
		}
		ids = append(ids, id)
	}
	return ids, nil
}
