// Pokeflow CLI — разворачивает цепочки эволюции и управляет выгрузкой.
//
// Использование:
//
//	pokeflow [--db-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	evolution flatten FILE...  Развернуть цепочки из JSON
//	evolution list             Показать сохранённые записи
//	extract                    Выгрузить PokeAPI в очередь
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/pokeflow/internal/cli"
	"github.com/shaiso/pokeflow/internal/config"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "pokeflow",
		Short:         "Pokeflow CLI — PokeAPI evolution pipeline",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.DBURL, "db-url", cfg.DBURL, "PostgreSQL URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	dbURLFn := func() string { return cfg.DBURL }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewEvolutionCmd(dbURLFn, outputFn),
		cli.NewExtractCmd(cfg, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
