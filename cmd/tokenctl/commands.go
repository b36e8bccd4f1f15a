// cmd/tokenctl/commands.go
package main

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/urfave/cli/v2"

	tcapp "tokenforge/internal/application/tokenCreation"
	tcdom "tokenforge/internal/domain/tokenCreation"
	"tokenforge/internal/adapters/out/notify"
	"tokenforge/internal/infra/config"
	solanainfra "tokenforge/internal/infra/solana"
	"tokenforge/internal/platform/di"
)

// withUsecase は DI を組み立て、既存の通知先に標準出力を足してから fn を呼びます。
func withUsecase(c *cli.Context, fn func(ctx context.Context, uc *tcapp.TokenCreationUsecase) error) error {
	ctx := c.Context
	cont, err := di.NewContainer(ctx)
	if err != nil {
		return cli.Exit(fmt.Sprintf("init: %v", err), 1)
	}
	defer cont.Close()

	cont.TokenUC.SetNotifier(cliNotifier(cont.Notifier, os.Stdout))
	return fn(ctx, cont.TokenUC)
}

// cliNotifier は DI の通知先（ログ / メール）を残したまま w への表示を追加します。
func cliNotifier(base notify.Multi, w io.Writer) notify.Multi {
	out := make(notify.Multi, 0, len(base)+1)
	out = append(out, base...)
	return append(out, printNotifier(w))
}

func printNotifier(w io.Writer) tcdom.NotifierFunc {
	return func(_ context.Context, n tcdom.Notification) {
		fmt.Fprintf(w, "[%s] %s", n.Level, n.Message)
		if n.Description != "" {
			fmt.Fprintf(w, " (%s)", n.Description)
		}
		if n.TxID != "" {
			fmt.Fprintf(w, " txid=%s", n.TxID)
		}
		fmt.Fprintln(w)
	}
}

func createCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "upload metadata and create a new token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "symbol", Required: true},
			&cli.StringFlag{Name: "description"},
			&cli.IntFlag{Name: "decimals", Value: 9},
			&cli.StringFlag{Name: "supply", Value: "1000", Usage: "initial supply in whole tokens"},
			&cli.StringFlag{Name: "icon", Required: true, Usage: "path to the token image"},
			&cli.BoolFlag{Name: "revoke-mint"},
			&cli.BoolFlag{Name: "revoke-freeze"},
		},
		Action: func(c *cli.Context) error {
			icon, err := readIcon(c.String("icon"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			req := tcdom.TokenCreationRequest{
				Name:          c.String("name"),
				Symbol:        c.String("symbol"),
				Description:   c.String("description"),
				Decimals:      c.Int("decimals"),
				InitialSupply: c.String("supply"),
				Icon:          icon,
				RevokeMint:    c.Bool("revoke-mint"),
				RevokeFreeze:  c.Bool("revoke-freeze"),
			}
			return withUsecase(c, func(ctx context.Context, uc *tcapp.TokenCreationUsecase) error {
				res, err := uc.Create(ctx, req, "tokenctl")
				if err != nil {
					return cli.Exit(tcdom.UserMessage(err), 1)
				}
				fmt.Printf("mint:      %s\n", res.MintAddress)
				fmt.Printf("signature: %s\n", res.Signature)
				fmt.Printf("metadata:  %s\n", res.MetadataURI)
				fmt.Printf("fee:       %s SOL\n", tcdom.FormatSOL(res.FeeLamports))
				fmt.Printf("explorer:  %s\n", res.ExplorerURL)
				return nil
			})
		},
	}
}

func readIcon(path string) (tcdom.Icon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tcdom.Icon{}, fmt.Errorf("read icon: %w", err)
	}
	ct := mime.TypeByExtension(filepath.Ext(path))
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return tcdom.Icon{FileName: filepath.Base(path), ContentType: ct, Data: data}, nil
}

func feesCommand() *cli.Command {
	return &cli.Command{
		Name:  "fees",
		Usage: "show the service fee for a creation",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "revoke-mint"},
			&cli.BoolFlag{Name: "revoke-freeze"},
		},
		Action: func(c *cli.Context) error {
			cfg := config.Load()
			fees := tcdom.FeeSchedule{
				Receiver:     cfg.FeeReceiverAddress,
				Base:         cfg.BaseFeeLamports,
				RevokeMint:   cfg.RevokeMintLamports,
				RevokeFreeze: cfg.RevokeFreezeLamports,
			}
			q := fees.Quote(c.Bool("revoke-mint"), c.Bool("revoke-freeze"))
			fmt.Printf("receiver: %s\n", q.Receiver)
			fmt.Printf("total:    %s SOL (%d lamports)\n", q.TotalSOL, q.TotalLamports)
			return nil
		},
	}
}

func revokeCommand() *cli.Command {
	return &cli.Command{
		Name:      "revoke",
		Usage:     "revoke the mint or freeze authority of a token",
		ArgsUsage: "<mint>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "authority", Required: true, Usage: "mint | freeze"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: tokenctl revoke --authority mint|freeze <mint>", 2)
			}
			kind, err := tcapp.ParseAuthorityKind(c.String("authority"))
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}
			return withUsecase(c, func(ctx context.Context, uc *tcapp.TokenCreationUsecase) error {
				res, err := uc.RevokeAuthority(ctx, c.Args().First(), kind)
				if err != nil {
					return cli.Exit(tcdom.UserMessage(err), 1)
				}
				fmt.Printf("signature: %s\n", res.Signature)
				return nil
			})
		},
	}
}

func mintCommand() *cli.Command {
	return &cli.Command{
		Name:      "mint",
		Usage:     "mint additional supply to a receiver",
		ArgsUsage: "<mint>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "to", Required: true, Usage: "receiver wallet address"},
			&cli.StringFlag{Name: "amount", Required: true, Usage: "amount in whole tokens"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: tokenctl mint --to <wallet> --amount <n> <mint>", 2)
			}
			return withUsecase(c, func(ctx context.Context, uc *tcapp.TokenCreationUsecase) error {
				res, err := uc.MintSupply(ctx, c.Args().First(), c.String("to"), c.String("amount"))
				if err != nil {
					return cli.Exit(tcdom.UserMessage(err), 1)
				}
				fmt.Printf("signature: %s\n", res.Signature)
				if res.CreatedAssociatedAccount {
					fmt.Println("created associated token account for receiver")
				}
				return nil
			})
		},
	}
}

// keygenCommand は Solana CLI 互換の keypair JSON を生成します。
func keygenCommand() *cli.Command {
	return &cli.Command{
		Name:  "keygen",
		Usage: "generate a signer keypair file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "tokenforge-signer.json"},
			&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
		},
		Action: func(c *cli.Context) error {
			out := c.String("out")
			if _, err := os.Stat(out); err == nil && !c.Bool("force") {
				return cli.Exit(fmt.Sprintf("%s already exists (use --force)", out), 1)
			}

			acc := types.NewAccount()
			data, err := solanainfra.EncodeKeypair(acc)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return cli.Exit(fmt.Sprintf("write %s: %v", out, err), 1)
			}

			fmt.Printf("Public Key:\n  %s\n\n", acc.PublicKey.ToBase58())
			fmt.Printf("Secret key file (Solana-compatible JSON):\n  %s\n\n", out)
			fmt.Println("⚠ この JSON ファイルは Git にコミットしないでください。")
			fmt.Printf("  Secret Manager へ登録: gcloud secrets create <name> --data-file=%s\n", out)
			return nil
		},
	}
}
