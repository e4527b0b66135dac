package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPurgeCmd() *SubCommand {
	sc := &SubCommand{EnvPrefix: envPrefix}
	sc.Cmd = &cobra.Command{
		Use:   "purge",
		Short: "Drop every cached geometry of a namespace",
		Long: `Purge bumps the namespace generation in the shared Redis cache. Entries
written before are no longer read and expire with their TTL. In-process caches
do not outlive a single command and need no purge.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !strings.EqualFold(sc.Conf.GetString("cache"), "redis") {
				return errors.New("purge needs a shared cache (--cache=redis)")
			}
			ctx := cmd.Context()
			e, err := setup(sc.Conf, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.close(ctx)

			gen, err := e.loader.Purge(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "namespace %s now at generation %d\n", sc.Conf.GetString("namespace"), gen)
			return nil
		},
	}
	return sc
}
