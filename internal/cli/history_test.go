package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/mailtriage/internal/model"
	"github.com/runnerr0/mailtriage/internal/storage"
)

func TestHistoryCommand_Empty(t *testing.T) {
	store := testStore(t)
	cmd := &HistoryCommand{Order: "-created_date", Limit: 20, globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store))
	})
	assert.Contains(t, output, "No classifications found")
}

func TestHistoryCommand_ListsNewestFirst(t *testing.T) {
	store := testStore(t)
	seeded := seedStore(t, store, model.Productive, "primeiro pedido", "segundo pedido")
	cmd := &HistoryCommand{Order: "-created_date", Limit: 20, globals: &GlobalFlags{}}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store))
	})

	assert.Contains(t, output, "Found 2 entries")
	first := strings.Index(output, seeded[1].ID)
	second := strings.Index(output, seeded[0].ID)
	require.NotEqual(t, -1, first)
	require.NotEqual(t, -1, second)
	assert.Less(t, first, second)
	assert.Contains(t, output, "[productive 75%]")
}

func TestHistoryCommand_Filters(t *testing.T) {
	store := testStore(t)
	seedStore(t, store, model.Productive, "Erro no boleto", "Senha bloqueada")
	seedStore(t, store, model.Unproductive, "Feliz aniversário")

	tests := []struct {
		name   string
		label  string
		search string
		want   int
	}{
		{"all", "", "", 3},
		{"productive", "productive", "", 2},
		{"portuguese label", "Improdutivo", "", 1},
		{"search is case-insensitive", "", "BOLETO", 1},
		{"label and search", "unproductive", "boleto", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &HistoryCommand{Label: tt.label, Search: tt.search, globals: &GlobalFlags{JSON: true}}

			output := captureOutput(t, func() {
				require.NoError(t, cmd.executeWithStore(context.Background(), store))
			})

			var got []storage.Entry
			require.NoError(t, json.Unmarshal([]byte(output), &got))
			assert.Len(t, got, tt.want)
		})
	}
}

func TestHistoryCommand_SearchMatchesFileName(t *testing.T) {
	store := testStore(t)
	name := "Contrato-2024.pdf"
	_, err := store.Create(context.Background(), storage.NewEntry{
		Result:   model.Result{Classification: model.Productive, ConfidenceScore: 0.9},
		FileName: &name,
	})
	require.NoError(t, err)

	cmd := &HistoryCommand{Search: "contrato", globals: &GlobalFlags{}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store))
	})
	assert.Contains(t, output, "Found 1 entry")
	assert.Contains(t, output, "· Contrato-2024.pdf")
}

func TestHistoryCommand_Limit(t *testing.T) {
	store := testStore(t)
	seedStore(t, store, model.Productive, "a", "b", "c", "d")

	cmd := &HistoryCommand{Limit: 2, globals: &GlobalFlags{JSON: true}}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithStore(context.Background(), store))
	})

	var got []storage.Entry
	require.NoError(t, json.Unmarshal([]byte(output), &got))
	assert.Len(t, got, 2)
}

func TestHistoryCommand_InvalidFlags(t *testing.T) {
	store := testStore(t)

	err := (&HistoryCommand{Order: "title", globals: &GlobalFlags{}}).executeWithStore(context.Background(), store)
	assert.ErrorContains(t, err, "invalid order")

	err = (&HistoryCommand{Label: "spam", globals: &GlobalFlags{}}).executeWithStore(context.Background(), store)
	assert.ErrorContains(t, err, "invalid --label")

	err = (&HistoryCommand{Limit: -1, globals: &GlobalFlags{}}).executeWithStore(context.Background(), store)
	assert.ErrorContains(t, err, "--limit")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "a b c", snippet("a\n  b\tc", 10))
	assert.Equal(t, "abcd…", snippet("abcdefgh", 5))
	assert.Equal(t, "ção…", snippet("çãoxyz", 4))
}
