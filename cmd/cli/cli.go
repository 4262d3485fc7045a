package cli

import (
	"github.com/r2dtools/certman/config"
	"github.com/r2dtools/certman/internal/certificates"
	"github.com/r2dtools/certman/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configFilePath string

func Create() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "certman",
		Short:        "Simple file-based certificate tree manager",
		Version:      config.Version,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFilePath, "config", "", "config file path, $XDG_CONFIG_HOME/certman/config.yaml by default")
	flags.StringP(config.StoreOpt, "s", "", "certificate store path, current directory by default")
	flags.Bool(config.DebugOpt, false, "write debug messages to the log")

	viper.BindPFlag(config.StoreOpt, flags.Lookup(config.StoreOpt))
	viper.BindPFlag(config.DebugOpt, flags.Lookup(config.DebugOpt))

	rootCmd.AddCommand(CACmd)
	rootCmd.AddCommand(CertCmd)
	rootCmd.AddCommand(ShowCmd)
	rootCmd.AddCommand(InfoCmd)
	rootCmd.AddCommand(ListCmd)
	rootCmd.AddCommand(SetOptionCmd)

	return rootCmd
}

func createCertificateManager() (*config.Config, logger.Logger, *certificates.CertificateManager, error) {
	conf, err := config.GetConfig(configFilePath)

	if err != nil {
		return nil, nil, nil, err
	}

	log, err := logger.NewLogger(conf)

	if err != nil {
		return nil, nil, nil, err
	}

	certManager, err := certificates.CreateCertificateManager(conf, log)

	if err != nil {
		return nil, nil, nil, err
	}

	return conf, log, certManager, nil
}

// createIdentity maps the NAME argument and the --ca flag to a store identity.
func createIdentity(basename, caName string, isCA bool) *certificates.Identity {
	var parent *certificates.Identity

	if caName != "" {
		parent = certificates.NewCAIdentity(caName, nil)
	}

	if isCA {
		return certificates.NewCAIdentity(basename, parent)
	}

	return certificates.NewCertIdentity(basename, parent)
}
