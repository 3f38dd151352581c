package cmd

import (
	"Trivium/config"
	"Trivium/services/identity"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newTokenCmd mints a bearer token signed with --key, for local testing.
func newTokenCmd(cfg *config.Config) *cobra.Command {
	var (
		id  identity.Identity
		ttl time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if id.UID == "" {
				return errors.New("--uid is required")
			}
			verifier, err := identity.NewJWTVerifier(cfg.Key, cfg.TokenIssuer)
			if err != nil {
				return err
			}
			token, err := verifier.Issue(id, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&id.UID, "uid", "", "user id (token subject)")
	fs.StringVar(&id.Name, "name", "", "display name")
	fs.StringVar(&id.Email, "email", "", "email")
	fs.StringVar(&id.Picture, "picture", "", "photo URL")
	fs.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
