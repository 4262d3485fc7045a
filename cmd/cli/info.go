package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var InfoCmd = &cobra.Command{
	Use:   "info NAME",
	Short: "Show details of a stored certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, certManager, err := createCertificateManager()

		if err != nil {
			return err
		}

		info, err := certManager.Inspect(cmd.Context(), createIdentity(args[0], infoCA, infoIsCA))

		if err != nil {
			return err
		}

		var data []byte

		if infoJSON {
			data, err = json.MarshalIndent(info, "", " ")
		} else {
			data, err = yaml.Marshal(info)
		}

		if err != nil {
			return err
		}

		fmt.Println(string(data))

		return nil
	},
}

var infoCA string
var infoIsCA bool
var infoJSON bool

func init() {
	InfoCmd.Flags().StringVarP(&infoCA, "ca", "a", "", "name of the CA that signed the certificate")
	InfoCmd.Flags().BoolVar(&infoIsCA, "is-ca", false, "the certificate is a CA certificate")
	InfoCmd.Flags().BoolVar(&infoJSON, "json", false, "print JSON instead of YAML")
}
