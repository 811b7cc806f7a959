package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JorjanDorjan/ML-for-agile-methodology/services"
)

var (
	tokenSubject string
	tokenRole    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API bearer token",
	Long: `Token signs a bearer token with JWT_SECRET for calling the API.

Examples:
  agilerisk token --subject dashboard
  agilerisk token --subject ci --role service`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "token subject")
	tokenCmd.Flags().StringVarP(&tokenRole, "role", "r", "viewer", "token role")
	_ = tokenCmd.MarkFlagRequired("subject")
}

func runToken(cmd *cobra.Command, args []string) error {
	token, err := services.NewAuthService(cfg.JWT).GenerateToken(tokenSubject, tokenRole)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
