package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/CrispStrobe/filen-dart/internal/config"
	"github.com/CrispStrobe/filen-dart/internal/credentials"
	"github.com/CrispStrobe/filen-dart/internal/cryptoutil"
	"github.com/CrispStrobe/filen-dart/internal/envelope"
	"github.com/CrispStrobe/filen-dart/internal/model"
	"github.com/CrispStrobe/filen-dart/internal/transport"
)

func newLoginCommand() *cobra.Command {
	var email, password, twoFactor string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "authenticate and persist credentials to ~/.filen-cli/credentials.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				email = promptLine("email: ")
			}
			if password == "" {
				password = promptPassword("password: ")
			}

			opts := config.New(config.WithAPIBase(flags.apiBase))
			tr := transport.New(opts.APIBase, opts.IngestBase, opts.EgestBase, "", opts.Retries, opts.HTTPTimeout, opts.Logger)

			ctx := context.Background()
			info, err := tr.AuthInfo(ctx, email)
			if err != nil {
				return bail("auth/info failed: %w", err)
			}

			derived, err := cryptoutil.DeriveLogin(password, info.Salt, cryptoutil.AuthVersion(info.AuthVersion))
			if err != nil {
				return bail("unsupported authVersion %d: %w", info.AuthVersion, err)
			}

			loginResp, err := tr.Login(ctx, transport.LoginRequest{
				Email:         email,
				Password:      derived.LoginPassword,
				AuthVersion:   info.AuthVersion,
				TwoFactorCode: twoFactor,
			})
			if err != nil {
				return bail("login failed: %w", err)
			}

			rawEntries, err := loginResp.MasterKeyEntries()
			if err != nil {
				return bail("failed to parse master key ring: %w", err)
			}
			masterKeyAESKey := cryptoutil.DeriveEnvelopeKey(derived.LocalMasterKey)
			masterKeys, err := decodeMasterKeys(masterKeyAESKey, rawEntries, derived.LocalMasterKey)
			if err != nil {
				return bail("failed to decrypt master key ring: %w", err)
			}

			id := model.Identity{
				Email:        email,
				APIKey:       loginResp.APIKey,
				MasterKeys:   masterKeys,
				BaseFolderID: loginResp.BaseFolderID,
				UserID:       loginResp.ID,
			}

			if id.BaseFolderID == "" {
				authed := transport.New(opts.APIBase, opts.IngestBase, opts.EgestBase, id.APIKey, opts.Retries, opts.HTTPTimeout, opts.Logger)
				base, err := authed.UserBaseFolder(ctx)
				if err != nil {
					return bail("failed to resolve base folder: %w", err)
				}
				id.BaseFolderID = base.UUID
			}

			if err := credentials.Save(id); err != nil {
				return bail("failed to persist credentials: %w", err)
			}
			fmt.Println("logged in as", email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	cmd.Flags().StringVar(&twoFactor, "2fa", "", "two-factor code, if enabled")
	return cmd
}

// decodeMasterKeys opens each "002" envelope of the login response's
// master-key ring under localKey (derived from the password's local master
// key) and splits the pipe-joined plaintext. A bare, un-enveloped string is
// also accepted for older accounts.
func decodeMasterKeys(localKey []byte, raw []string, localMasterKey string) ([]string, error) {
	var out []string
	for _, entry := range raw {
		if !strings.HasPrefix(entry, "002") {
			out = append(out, entry)
			continue
		}
		plaintext, err := envelope.Decode002(localKey, entry)
		if err != nil {
			return nil, err
		}
		out = append(out, strings.Split(string(plaintext), "|")...)
	}
	if len(out) == 0 {
		out = []string{localMasterKey}
	}
	return out, nil
}

func promptLine(label string) string {
	fmt.Print(label)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Scan()
	return strings.TrimSpace(scanner.Text())
}

func promptPassword(label string) string {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return promptLine("")
	}
	return strings.TrimSpace(string(raw))
}
