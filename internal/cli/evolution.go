package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shaiso/pokeflow/internal/domain"
	"github.com/shaiso/pokeflow/internal/evolution"
	"github.com/shaiso/pokeflow/internal/repo"
)

// ErrUnknownDocument — JSON не похож ни на цепочку, ни на узел.
var ErrUnknownDocument = errors.New("unrecognized evolution document")

// NewEvolutionCmd создаёт группу команд для цепочек эволюции.
func NewEvolutionCmd(dbURLFn func() string, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evolution",
		Short: "Flatten and inspect evolution chains",
	}

	cmd.AddCommand(
		newEvolutionFlattenCmd(outputFn),
		newEvolutionListCmd(dbURLFn, outputFn),
	)

	return cmd
}

func newEvolutionFlattenCmd(outputFn func() *Output) *cobra.Command {
	var truncate bool

	cmd := &cobra.Command{
		Use:   "flatten FILE...",
		Short: "Flatten evolution chain JSON into 3-stage records",
		Long: `Reads PokeAPI evolution-chain documents and prints one record per
evolution path. A file may hold a chain ({"id", "chain"}), a bare chain
node ({"species", "evolves_to"}), an evolution.batch payload
({"evolution": [...]}) or a JSON array of any of these. Use "-" for stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()

			policy := evolution.OverflowReject
			if truncate {
				policy = evolution.OverflowTruncate
			}
			f := evolution.NewFlattener(evolution.Options{Overflow: policy})

			var (
				records []domain.EvolutionRecord
				failed  int
			)
			for _, path := range args {
				chains, err := readChains(path, cmd.InOrStdin())
				if err != nil {
					return err
				}

				for i := range chains {
					chainRecords, err := f.Flatten(&chains[i].Chain)
					if err != nil {
						failed++
						out.Error(fmt.Sprintf("%s: chain %s: %v", path, chainLabel(&chains[i]), err))
						continue
					}
					records = append(records, chainRecords...)
				}
			}

			out.Records(records)

			if failed > 0 {
				return fmt.Errorf("%d chain(s) could not be flattened", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&truncate, "truncate", false, "Cut chains deeper than 3 stages instead of rejecting them")
	return cmd
}

func newEvolutionListCmd(dbURLFn func() string, outputFn func() *Output) *cobra.Command {
	var (
		limit int
		form  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored evolution records",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := outputFn()
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			pool, err := repo.NewPool(ctx, dbURLFn())
			if err != nil {
				return err
			}
			defer pool.Close()

			evolutions := repo.NewEvolutionRepo(pool)

			var records []domain.EvolutionRecord
			if form != "" {
				records, err = evolutions.ListByForm(ctx, form)
			} else {
				records, err = evolutions.List(ctx, limit)
			}
			if err != nil {
				return err
			}

			out.Records(records)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum number of records")
	cmd.Flags().StringVar(&form, "form", "", "Only records containing this species")
	return cmd
}

// readChains читает цепочки из файла или stdin ("-").
func readChains(path string, stdin io.Reader) ([]domain.EvolutionChain, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	chains, err := DecodeChains(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return chains, nil
}

// DecodeChains разбирает JSON с одной или несколькими цепочками.
func DecodeChains(data []byte) ([]domain.EvolutionChain, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrUnknownDocument)
	}

	if data[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}

		var chains []domain.EvolutionChain
		for i, item := range items {
			decoded, err := DecodeChains(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			chains = append(chains, decoded...)
		}
		return chains, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	switch {
	case probe["chain"] != nil:
		var chain domain.EvolutionChain
		if err := json.Unmarshal(data, &chain); err != nil {
			return nil, fmt.Errorf("decode chain: %w", err)
		}
		return []domain.EvolutionChain{chain}, nil

	case probe["species"] != nil:
		var root domain.ChainNode
		if err := json.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("decode chain node: %w", err)
		}
		return []domain.EvolutionChain{{Chain: root}}, nil

	case probe["evolution"] != nil:
		var batch struct {
			Chains []domain.EvolutionChain `json:"evolution"`
		}
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("decode batch: %w", err)
		}
		return batch.Chains, nil
	}

	return nil, ErrUnknownDocument
}

func chainLabel(chain *domain.EvolutionChain) string {
	if chain.ID != 0 {
		return strconv.Itoa(chain.ID)
	}
	if name := chain.Chain.SpeciesName(); name != "" {
		return strconv.Quote(name)
	}
	return "?"
}
