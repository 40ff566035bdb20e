package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/platinummonkey/protogen/pkg/codegen"
	"github.com/spf13/cobra"
)

// LanguageInfo describes a language protoc generates natively
type LanguageInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

func newLanguagesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "languages",
		Short: "List the languages protoc can generate without plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			infos := make([]LanguageInfo, len(codegen.Languages))
			for i, l := range codegen.Languages {
				infos[i] = LanguageInfo{ID: string(l), Name: l.Name(), Flag: l.OutFlag()}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tFLAG")
			for _, l := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID, l.Name, l.Flag)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}
