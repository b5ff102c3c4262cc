package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/pokeflow/internal/domain"
	"github.com/shaiso/pokeflow/internal/pokeapi"
)

// fakePublisher запоминает опубликованные пакеты.
type fakePublisher struct {
	pokemon []domain.Pokemon
	chains  []domain.EvolutionChain
	types   []domain.PokemonType
	order   []string
	err     error
}

func (p *fakePublisher) PublishPokemon(_ context.Context, pokemon []domain.Pokemon) error {
	p.order = append(p.order, "pokemon")
	p.pokemon = pokemon
	return p.err
}

func (p *fakePublisher) PublishEvolutions(_ context.Context, chains []domain.EvolutionChain) error {
	p.order = append(p.order, "evolution")
	p.chains = chains
	return p.err
}

func (p *fakePublisher) PublishTypes(_ context.Context, types []domain.PokemonType) error {
	p.order = append(p.order, "types")
	p.types = types
	return p.err
}

// newPokeAPI поднимает минимальный PokeAPI с тремя ресурсами каждого вида.
// Покемон с id=3 отвечает 404.
func newPokeAPI(t *testing.T) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	list := func(w http.ResponseWriter, resource string, names ...string) {
		results := make([]map[string]string, len(names))
		for i, name := range names {
			results[i] = map[string]string{
				"name": name,
				"url":  fmt.Sprintf("%s/%s/%d/", server.URL, resource, i+1),
			}
		}
		json.NewEncoder(w).Encode(map[string]any{"count": len(names), "next": nil, "results": results})
	}

	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimSuffix(r.URL.Path, "/")
		switch path {
		case "/pokemon":
			list(w, "pokemon", "bulbasaur", "ivysaur", "missingno")
		case "/pokemon/1":
			fmt.Fprint(w, `{"id": 1, "name": "bulbasaur"}`)
		case "/pokemon/2":
			// медленный ответ не должен нарушить порядок
			time.Sleep(20 * time.Millisecond)
			fmt.Fprint(w, `{"id": 2, "name": "ivysaur"}`)
		case "/pokemon/3":
			http.NotFound(w, r)
		case "/evolution-chain":
			list(w, "evolution-chain", "", "")
		case "/evolution-chain/1":
			fmt.Fprint(w, `{"id": 1, "chain": {"species": {"name": "bulbasaur"}, "evolves_to": [
				{"species": {"name": "ivysaur"}, "evolves_to": []}]}}`)
		case "/evolution-chain/2":
			fmt.Fprint(w, `{"id": 2, "chain": {"species": {"name": "tauros"}, "evolves_to": []}}`)
		case "/type":
			assert.Empty(t, r.URL.Query().Get("limit"), "types are listed page by page")
			list(w, "type", "grass")
		case "/type/1":
			fmt.Fprint(w, `{"id": 12, "name": "grass", "pokemon": [{"slot": 1, "pokemon": {"name": "bulbasaur"}}]}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	return server
}

func newTestExtractor(server *httptest.Server, publisher Publisher) *Extractor {
	client := pokeapi.New(pokeapi.Config{
		BaseURL:      server.URL,
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
	})

	return New(Config{
		Client:         client,
		Publisher:      publisher,
		Concurrency:    4,
		PokemonLimit:   10,
		EvolutionLimit: 10,
	})
}

func TestExtractor_Run(t *testing.T) {
	server := newPokeAPI(t)
	publisher := &fakePublisher{}

	stats, err := newTestExtractor(server, publisher).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"pokemon", "evolution", "types"}, publisher.order)

	require.Len(t, publisher.pokemon, 2)
	assert.Equal(t, "bulbasaur", publisher.pokemon[0].Name)
	assert.Equal(t, "ivysaur", publisher.pokemon[1].Name)

	require.Len(t, publisher.chains, 2)
	assert.Equal(t, 1, publisher.chains[0].ID)
	assert.Equal(t, "tauros", publisher.chains[1].Chain.SpeciesName())

	require.Len(t, publisher.types, 1)
	assert.Equal(t, "grass", publisher.types[0].Name)

	assert.Equal(t, 2, stats.Pokemon)
	assert.Equal(t, 2, stats.Chains)
	assert.Equal(t, 1, stats.Types)
	assert.Equal(t, 1, stats.Skipped)
}

func TestExtractor_PublishError(t *testing.T) {
	server := newPokeAPI(t)
	publisher := &fakePublisher{err: errors.New("broker down")}

	_, err := newTestExtractor(server, publisher).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"pokemon"}, publisher.order, "stops after first failed publish")
}

func TestExtractor_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	publisher := &fakePublisher{}
	_, err := newTestExtractor(server, publisher).Run(context.Background())
	require.ErrorIs(t, err, pokeapi.ErrRequest)
	assert.Empty(t, publisher.order)
}
