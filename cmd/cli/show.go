package cli

import (
	"fmt"

	"github.com/r2dtools/certman/internal/certificates"
	"github.com/r2dtools/certman/internal/certificates/fenced"
	"github.com/spf13/cobra"
)

var ShowCmd = &cobra.Command{
	Use:   "show NAME",
	Short: "Print stored certificate material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, certManager, err := createCertificateManager()

		if err != nil {
			return err
		}

		checks := certificates.CheckCert

		if showKey {
			checks |= certificates.CheckKey
		}

		if showRSAKey {
			checks |= certificates.CheckRSAKey
		}

		if showRequest {
			checks |= certificates.CheckRequest
		}

		bundle, err := certManager.Get(createIdentity(args[0], showCA, showIsCA), checks)

		if err != nil {
			return err
		}

		fmt.Print(fenced.Encode(bundle))

		return nil
	},
}

var showCA string
var showIsCA bool
var showKey bool
var showRSAKey bool
var showRequest bool

func init() {
	ShowCmd.Flags().StringVarP(&showCA, "ca", "a", "", "name of the CA that signed the certificate")
	ShowCmd.Flags().BoolVar(&showIsCA, "is-ca", false, "the certificate is a CA certificate")
	ShowCmd.Flags().BoolVarP(&showKey, "key", "k", false, "include the private key")
	ShowCmd.Flags().BoolVarP(&showRSAKey, "rsa-key", "r", false, "include the RSA private key")
	ShowCmd.Flags().BoolVarP(&showRequest, "request", "q", false, "include the certificate request")
}
