package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/platinummonkey/protogen/pkg/config"
	"github.com/spf13/cobra"
)

// pluginInfo is the printed form of a resolved plugin
type pluginInfo struct {
	ID      string   `json:"id"`
	Path    string   `json:"path"`
	Order   int      `json:"order"`
	Options []string `json:"options,omitempty"`
}

func newPluginsCommand(a *app) *cobra.Command {
	var (
		file   string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Resolve the request's plugins and print their executables",
		Long: "Resolve every plugin of the request file the way generate would and print\n" +
			"the resulting executables. The scratch directory is kept so the printed\n" +
			"paths stay valid.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.ready(); err != nil {
				return err
			}

			req, err := config.LoadRequest(file)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			env, err := newEnvironment(ctx, a.cfg, a.log, envOptions{keepScratch: true})
			if err != nil {
				return err
			}
			defer func() { _ = env.close(ctx) }()

			resolved, err := env.plugins.Resolve(ctx, req.Plugins)
			if err != nil {
				return err
			}

			infos := make([]pluginInfo, len(resolved))
			for i, p := range resolved {
				infos[i] = pluginInfo{ID: p.ID, Path: p.Path, Order: p.Order, Options: p.Options}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}

			if len(infos) == 0 {
				fmt.Fprintln(out, "No plugins configured")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tORDER\tPATH\tOPTIONS")
			for _, p := range infos {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", shortID(p.ID), p.Order, p.Path, strings.Join(p.Options, ","))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", config.DefaultRequestFile, "Generation request file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	return cmd
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
