package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michalnik/money-collector/internal/app/query"
)

type outputFlags struct {
	format string
	query  string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "pretty", "output format: pretty|json")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "JSONPath applied to the JSON output, one match per line")
}

// print writes v as JSON or through pretty. A query always works on the JSON form.
func (f outputFlags) print(w io.Writer, v any, pretty func() string) error {
	if strings.TrimSpace(f.query) != "" {
		body, err := json.Marshal(v)
		if err != nil {
			return err
		}
		lines, err := query.Apply(body, f.query)
		if err != nil {
			return err
		}
		for _, l := range lines {
			fmt.Fprintln(w, l)
		}
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(f.format)) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "pretty", "":
		fmt.Fprintln(w, pretty())
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", f.format)
	}
}
