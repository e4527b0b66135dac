package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/hairstrand/geom"
)

func newInfoCmd() *SubCommand {
	sc := &SubCommand{EnvPrefix: envPrefix}
	sc.Cmd = &cobra.Command{
		Use:   "info <file.data>...",
		Short: "Print strand, vertex and edge counts, bounds and lengths",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, err := setup(sc.Conf, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close(ctx)

			out := cmd.OutOrStdout()
			for _, path := range args {
				g, err := e.loader.LoadFile(ctx, path)
				if err != nil {
					return fmt.Errorf("info %s: %w", path, err)
				}
				s := geom.Summarize(g)
				fmt.Fprintf(out, "%s\n", path)
				fmt.Fprintf(out, "  strands:  %d\n", s.Strands)
				fmt.Fprintf(out, "  vertices: %d\n", s.Vertices)
				fmt.Fprintf(out, "  edges:    %d\n", s.Edges)
				fmt.Fprintf(out, "  bounds:   (%.4g, %.4g, %.4g) .. (%.4g, %.4g, %.4g)\n",
					s.Min.X, s.Min.Y, s.Min.Z, s.Max.X, s.Max.Y, s.Max.Z)
				fmt.Fprintf(out, "  length:   total %.4g, mean %.4g per strand\n", s.TotalLength, s.MeanLength)
			}
			return nil
		},
	}
	return sc
}
