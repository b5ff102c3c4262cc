package loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/pokeflow/internal/domain"
	"github.com/shaiso/pokeflow/internal/evolution"
	"github.com/shaiso/pokeflow/internal/mq"
)

var node = domain.NewChainNode

// fakeSink запоминает пакеты записей; failFor — корень цепочки, на котором запись падает.
type fakeSink struct {
	batches [][]domain.EvolutionRecord
	failFor string
}

func (s *fakeSink) InsertEvolutions(_ context.Context, records []domain.EvolutionRecord) (int64, error) {
	if s.failFor != "" && len(records) > 0 && records[0].FirstForm == s.failFor {
		return 0, errors.New("connection reset")
	}
	s.batches = append(s.batches, records)
	return int64(len(records)), nil
}

type fakePokemonStore struct {
	rows []domain.PokemonRow
	ids  map[string]int64
}

func (s *fakePokemonStore) InsertPokemon(_ context.Context, rows []domain.PokemonRow) (int64, error) {
	s.rows = append(s.rows, rows...)
	return int64(len(rows)), nil
}

func (s *fakePokemonStore) NameIDs(context.Context) (map[string]int64, error) {
	return s.ids, nil
}

type fakeTypeStore struct {
	names []string
	links []domain.TypeLink
}

func (s *fakeTypeStore) InsertTypes(_ context.Context, names []string) (int64, error) {
	s.names = append(s.names, names...)
	return int64(len(names)), nil
}

func (s *fakeTypeStore) NameIDs(context.Context) (map[string]int64, error) {
	ids := make(map[string]int64, len(s.names))
	for i, name := range s.names {
		ids[name] = int64(i + 1)
	}
	return ids, nil
}

func (s *fakeTypeStore) InsertLinks(_ context.Context, links []domain.TypeLink) (int64, error) {
	s.links = append(s.links, links...)
	return int64(len(links)), nil
}

func newTestLoader(sink *fakeSink, pokemon *fakePokemonStore, types *fakeTypeStore, policy evolution.OverflowPolicy) *Loader {
	if sink == nil {
		sink = &fakeSink{}
	}
	if pokemon == nil {
		pokemon = &fakePokemonStore{}
	}
	if types == nil {
		types = &fakeTypeStore{}
	}
	return New(Config{
		Pokemon:    pokemon,
		Evolutions: sink,
		Types:      types,
		Overflow:   policy,
	})
}

func delivery(t *testing.T, msgType mq.MessageType, payload any) *mq.Delivery {
	t.Helper()
	msg, err := mq.NewMessage(msgType, payload)
	require.NoError(t, err)
	return &mq.Delivery{Message: *msg}
}

func TestLoadEvolutions(t *testing.T) {
	sink := &fakeSink{}
	l := newTestLoader(sink, nil, nil, "")

	chains := []domain.EvolutionChain{
		{ID: 1, Chain: node("bulbasaur", node("ivysaur", node("venusaur")))},
		{ID: 2, Chain: node("tauros")},
		{ID: 3, Chain: node("A", node("B", node("C", node("D"))))},
		{ID: 4, Chain: node("eevee", node("vaporeon"), node("jolteon"))},
		{ID: 5, Chain: node("X", node(""))},
	}

	report, err := l.LoadEvolutions(context.Background(), chains)
	require.NoError(t, err)

	assert.Equal(t, 5, report.Chains)
	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 1, report.Unevolving)
	assert.Equal(t, 2, report.Rejected)
	assert.Equal(t, 3, report.Records)
	assert.Equal(t, int64(3), report.Written)

	require.Len(t, sink.batches, 2, "one batch per chain")
	assert.Equal(t, "bulbasaur -> ivysaur -> venusaur", sink.batches[0][0].String())
	require.Len(t, sink.batches[1], 2)
	assert.Equal(t, "eevee -> jolteon", sink.batches[1][1].String())
}

func TestLoadEvolutions_TruncatePolicy(t *testing.T) {
	sink := &fakeSink{}
	l := newTestLoader(sink, nil, nil, evolution.OverflowTruncate)

	report, err := l.LoadEvolutions(context.Background(), []domain.EvolutionChain{
		{ID: 3, Chain: node("A", node("B", node("C", node("D"))))},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Rejected)
	require.Len(t, sink.batches, 1)
	assert.Equal(t, "A -> B -> C", sink.batches[0][0].String())
}

func TestLoadEvolutions_SinkFailureDoesNotStopBatch(t *testing.T) {
	sink := &fakeSink{failFor: "charmander"}
	l := newTestLoader(sink, nil, nil, "")

	report, err := l.LoadEvolutions(context.Background(), []domain.EvolutionChain{
		{ID: 1, Chain: node("bulbasaur", node("ivysaur"))},
		{ID: 2, Chain: node("charmander", node("charmeleon"))},
		{ID: 3, Chain: node("squirtle", node("wartortle"))},
	})
	require.ErrorIs(t, err, ErrSinkFailed)
	assert.NotErrorIs(t, err, mq.ErrReject, "sink errors are retried")

	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 1, report.SinkFailed)
	assert.Len(t, sink.batches, 2)
}

func TestLoadEvolutions_Cancelled(t *testing.T) {
	sink := &fakeSink{}
	l := newTestLoader(sink, nil, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.LoadEvolutions(ctx, []domain.EvolutionChain{
		{ID: 1, Chain: node("bulbasaur", node("ivysaur"))},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sink.batches)
}

func TestLoadPokemon_SkipsIncomplete(t *testing.T) {
	store := &fakePokemonStore{}
	l := newTestLoader(nil, store, nil, "")

	stat := func(name string, value int) domain.PokemonStat {
		return domain.PokemonStat{BaseStat: value, Stat: domain.NamedResource{Name: name}}
	}
	complete := domain.Pokemon{
		ID:   25,
		Name: "pikachu",
		Stats: []domain.PokemonStat{
			stat(domain.StatSpeed, 90),
			stat(domain.StatHP, 35),
			stat(domain.StatAttack, 55),
			stat(domain.StatDefense, 40),
			stat(domain.StatSpecialAttack, 50),
			stat(domain.StatSpecialDefense, 50),
		},
	}
	incomplete := domain.Pokemon{ID: 0, Name: "missingno"}

	report, err := l.LoadPokemon(context.Background(), []domain.Pokemon{complete, incomplete})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Rows)
	assert.Equal(t, 1, report.Skipped)

	require.Len(t, store.rows, 1)
	assert.Equal(t, 35, store.rows[0].HP)
	assert.Equal(t, 90, store.rows[0].Speed)
}

func TestLoadTypes_ResolvesIDs(t *testing.T) {
	pokemon := &fakePokemonStore{ids: map[string]int64{"bulbasaur": 1, "charmander": 4}}
	types := &fakeTypeStore{}
	l := newTestLoader(nil, pokemon, types, "")

	entry := func(name string) domain.TypePokemon {
		return domain.TypePokemon{Pokemon: domain.NamedResource{Name: name}}
	}
	report, err := l.LoadTypes(context.Background(), []domain.PokemonType{
		{Name: "grass", Pokemon: []domain.TypePokemon{entry("bulbasaur"), entry("unknown-form")}},
		{Name: "fire", Pokemon: []domain.TypePokemon{entry("charmander")}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Types)
	assert.Equal(t, 3, report.Relations)
	assert.Equal(t, 1, report.UnknownPokemon)
	assert.Equal(t, int64(2), report.Links)
	assert.Equal(t, []domain.TypeLink{
		{PokemonID: 1, TypeID: 1},
		{PokemonID: 4, TypeID: 2},
	}, types.links)
}

func TestHandleDelivery_Dispatch(t *testing.T) {
	sink := &fakeSink{}
	l := newTestLoader(sink, nil, nil, "")

	d := delivery(t, mq.MessageTypeEvolutionBatch, mq.EvolutionBatchPayload{
		Chains: []domain.EvolutionChain{{ID: 1, Chain: node("A", node("B"))}},
	})
	require.NoError(t, l.HandleDelivery(context.Background(), d))
	require.Len(t, sink.batches, 1)
}

func TestHandleDelivery_UnknownType(t *testing.T) {
	l := newTestLoader(nil, nil, nil, "")

	err := l.HandleDelivery(context.Background(), delivery(t, "berry.batch", map[string]any{}))
	assert.ErrorIs(t, err, ErrUnknownMessageType)
	assert.ErrorIs(t, err, mq.ErrReject)
}

func TestHandleDelivery_BadPayload(t *testing.T) {
	l := newTestLoader(nil, nil, nil, "")

	d := &mq.Delivery{Message: mq.Message{
		ID:      "m1",
		Type:    mq.MessageTypeEvolutionBatch,
		Payload: []byte(`{"evolution": "nope"}`),
	}}
	assert.ErrorIs(t, l.HandleDelivery(context.Background(), d), mq.ErrReject)
}
