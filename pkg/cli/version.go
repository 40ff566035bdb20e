package cli

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/platinummonkey/protogen/pkg/codegen/protoc"
	"github.com/spf13/cobra"
)

func newVersionCommand(a *app, version string) *cobra.Command {
	var (
		withProtoc    bool
		protocVersion string
	)

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the protogen version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "protogen %s (%s %s/%s)\n", version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			if !withProtoc {
				return nil
			}
			if err := a.ready(); err != nil {
				return err
			}

			ctx := cmd.Context()
			env, err := newEnvironment(ctx, a.cfg, a.log, envOptions{})
			if err != nil {
				return err
			}
			defer func() { _ = env.close(ctx) }()

			compiler, err := env.compiler.Resolve(ctx, protocVersion)
			if err != nil {
				return err
			}
			text, err := env.executor.Output(ctx, protoc.Version(compiler))
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s (%s)\n", strings.TrimSpace(text), compiler)
			return nil
		},
	}

	cmd.Flags().BoolVar(&withProtoc, "protoc", false, "Also resolve protoc and print its version")
	cmd.Flags().StringVar(&protocVersion, "protoc-version", "", "protoc version, PATH or a file")
	return cmd
}
