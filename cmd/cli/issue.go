package cli

import (
	"context"
	"fmt"

	"github.com/r2dtools/certman/internal/tempfiles"
	"github.com/spf13/cobra"
)

var CACmd = &cobra.Command{
	Use:   "ca NAME",
	Short: "Create new CA certificate",
	Long:  "Create new CA certificate. NAME must be unique among all CA certificates within the store.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issue(cmd.Context(), args[0], true, caFlags, nil)
	},
}

var CertCmd = &cobra.Command{
	Use:   "cert NAME",
	Short: "Create new server/client certificate",
	Long:  "Create new server/client certificate. NAME must be unique among all certificates within the store signed by the same CA.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return issue(cmd.Context(), args[0], false, certFlags, certDomainNames)
	},
}

var caFlags = &requestFlags{}
var certFlags = &requestFlags{}
var certDomainNames []string

func issue(ctx context.Context, basename string, isCA bool, flags *requestFlags, domainNames []string) error {
	if err := flags.validate(); err != nil {
		return err
	}

	conf, log, certManager, err := createCertificateManager()

	if err != nil {
		return err
	}

	cleaner, err := tempfiles.CreateCleaner(log)

	if err != nil {
		return err
	}

	defer func() {
		if err := cleaner.Cleanup(); err != nil {
			log.Error("%v", err)
		}
	}()

	identity := createIdentity(basename, flags.ca, isCA)
	issueRequest := flags.build(basename, isCA, domainNames, conf.Defaults)

	if _, err := certManager.Issue(ctx, cleaner, identity, issueRequest); err != nil {
		return err
	}

	fmt.Printf("Created %s in %s\n", identity.Description(), conf.StorePath)

	return nil
}

func init() {
	caFlags.register(CACmd, "sign the new certificate with another CA that already exists in the certificate store (the default is to create a root self-signed CA)")
	certFlags.register(CertCmd, "sign the new certificate with a CA that already exists in the certificate store (the default is to create a self-signed certificate)")
	CertCmd.Flags().StringArrayVarP(&certDomainNames, "name", "n", nil, "domain name that is authenticated by this certificate, can be specified several times for multiple aliases, CN is used as a single domain name if none are specified")
}
