package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// SubCommand pairs a cobra command with its own viper instance so flags,
// HAIRSTRAND_* environment variables and the config file resolve per command.
type SubCommand struct {
	Cmd  *cobra.Command
	Conf *viper.Viper

	EnvPrefix string
}
