package cli

import (
	"fmt"

	"github.com/r2dtools/certman/config"
	"github.com/r2dtools/certman/internal/certerr"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

var SetOptionCmd = &cobra.Command{
	Use:   "set-option NAME VALUE",
	Short: "Save option to the config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, value := args[0], args[1]

		if !slices.Contains(settableOptions, name) {
			return fmt.Errorf("%w: unknown option %s", certerr.ErrConfiguration, name)
		}

		conf, err := config.GetConfig(configFilePath)

		if err != nil {
			return err
		}

		if err := config.CreateConfigFileIfNotExists(conf); err != nil {
			return err
		}

		if err := conf.SetParam(name, value); err != nil {
			return err
		}

		fmt.Printf("Option %s saved to %s\n", name, conf.ConfigFilePath)

		return nil
	},
}

var settableOptions = []string{
	config.StoreOpt,
	config.KeyDirOpt,
	config.OpenSSLBinOpt,
	config.OpenSSLTimeoutOpt,
	config.RSATraditionalOpt,
	config.LockingOpt,
	config.DebugOpt,
	config.LogFileOpt,
}
