// cmd/tokenctl/main.go
//
// tokenctl は API サーバと同じ usecase をローカル署名鍵で直接動かす運用ツールです。
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "tokenctl",
		Usage: "create and manage SPL tokens",
		Commands: []*cli.Command{
			createCommand(),
			feesCommand(),
			revokeCommand(),
			mintCommand(),
			keygenCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("[tokenctl] %v", err)
	}
}
