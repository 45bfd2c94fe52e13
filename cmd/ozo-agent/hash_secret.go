package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	serviceAuth "github.com/ozo-extended/ozo-agent/internal/service/auth"
	"github.com/spf13/cobra"
)

func newHashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret [secret]",
		Short: "Print a bcrypt hash for CLIENT_SECRET_HASH",
		Long: "Print a bcrypt hash for CLIENT_SECRET_HASH.\n" +
			"The secret is read from the first line of stdin when no argument is given.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd, args)
			if err != nil {
				return err
			}

			hash, err := serviceAuth.HashSecret(secret)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func readSecret(cmd *cobra.Command, args []string) (string, error) {
	var line string
	if len(args) == 1 {
		line = args[0]
	} else {
		var err error
		line, err = bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("reading secret from stdin: %w", err)
		}
	}

	secret := strings.TrimSpace(line)
	if secret == "" {
		return "", errors.New("secret must not be empty")
	}
	return secret, nil
}
