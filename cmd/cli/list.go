package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/r2dtools/certman/internal/dto"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List certificates in the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, certManager, err := createCertificateManager()

		if err != nil {
			return err
		}

		certs, err := certManager.GetStorageCertificates()

		if err != nil {
			return err
		}

		printCertificates(os.Stdout, certs, listPaths)

		return nil
	},
}

var listPaths bool

func printCertificates(w io.Writer, certs []*dto.StoredCertificate, withPaths bool) {
	cas := lo.Filter(certs, func(cert *dto.StoredCertificate, _ int) bool { return cert.IsCA })
	selfSigned := lo.Reject(certs, func(cert *dto.StoredCertificate, _ int) bool { return cert.IsCA })

	for _, ca := range cas {
		printCertificate(w, "", ca.Name+" (CA)", ca.CertPath, withPaths)

		for _, child := range ca.Children {
			printCertificate(w, "  ", child.Name, child.CertPath, withPaths)
		}
	}

	for _, cert := range selfSigned {
		printCertificate(w, "", cert.Name+" (self-signed)", cert.CertPath, withPaths)
	}
}

func printCertificate(w io.Writer, indent, name, path string, withPaths bool) {
	if withPaths {
		fmt.Fprintf(w, "%s%s\t%s\n", indent, name, path)
	} else {
		fmt.Fprintf(w, "%s%s\n", indent, name)
	}
}

func init() {
	ListCmd.Flags().BoolVarP(&listPaths, "paths", "p", false, "print certificate paths")
}
