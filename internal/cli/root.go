// Package cli implements the hairstrand command line.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "HAIRSTRAND"

// NewRootCmd builds the command tree. out receives command output (not logs).
func NewRootCmd(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "hairstrand",
		Short: "Decode USC-HairSalon hairstyles into line meshes",
		Long: `
hairstrand reads USC-HairSalon .data hairstyle files, turns every strand into
a polyline and exports the result as a Wavefront OBJ line mesh, a summary or
a preview image. Decoded geometry can be cached in-process or in Redis.
`,
		SilenceUsage: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.String("config", "",
		"Configuration file. Takes precedence over default values, but is "+
			"overridden to values set with environment variables and flags.")
	flags.String("policy", "general",
		"Vertex count policy: general (any count) or reference (only 1 or 100).")
	flags.Int("expected_strands", 0,
		"Expected strand count per file; 0 disables the check. The reference dataset uses 10000.")
	flags.Bool("strict_count", false,
		"Fail instead of warn when expected_strands does not match.")
	flags.String("cache", "none", "Geometry cache: none, ristretto, bigcache or redis.")
	flags.Int("cache_mb", 256, "In-process cache budget in MiB.")
	flags.Duration("cache_ttl", 0, "Cache entry TTL; 0 keeps the default of 24h.")
	flags.String("namespace", "default", "Cache key namespace.")
	flags.String("redis_addr", "localhost:6379", "Redis address for --cache=redis.")
	flags.String("codec", "protobuf", "Cache encoding: protobuf, msgpack, cbor, json or strands.")
	flags.Int("max_entry_mb", 256, "Largest cache entry accepted on read, in MiB; 0 disables the limit.")
	flags.String("log_format", "zap", "Logger: zap, logrus or slog.")
	flags.String("log_level", "info", "Log level: debug, info, warn or error.")
	flags.Bool("events", false, "Log decoder and cache events (trailing bytes, self-heals, rejects).")

	subcommands := []*SubCommand{newImportCmd(), newInfoCmd(), newPreviewCmd(), newPurgeCmd()}
	for _, sc := range subcommands {
		root.AddCommand(sc.Cmd)
		sc.Conf = newConf(sc.EnvPrefix, sc.Cmd.Flags(), root.PersistentFlags())
	}

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		cfg, _ := cmd.Flags().GetString("config")
		if cfg == "" {
			return nil
		}
		for _, sc := range subcommands {
			sc.Conf.SetConfigFile(cfg)
			if err := sc.Conf.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config: %w", err)
			}
		}
		return nil
	}
	return root
}

func newConf(envPrefix string, sets ...*pflag.FlagSet) *viper.Viper {
	conf := viper.New()
	for _, fs := range sets {
		_ = conf.BindPFlags(fs)
	}
	conf.SetEnvPrefix(envPrefix)
	conf.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	conf.AutomaticEnv()
	return conf
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
