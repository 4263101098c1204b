package db

import (
	"context"
	"path/filepath"
	"poloscraper/lib/scrapers/polo"
	"poloscraper/services/collector"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveRun(t *testing.T) {
	archive, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer archive.Close()

	records := []collector.Record{
		{
			CPF: "11111111111",
			Fields: polo.FieldMap{
				polo.FieldName: "Ana Souza",
				polo.FieldCPF:  "11111111111",
			},
			Method: collector.MethodComplete,
		},
	}

	runID, err := archive.SaveRun(context.Background(), "USJT", collector.MethodComplete, records)
	require.NoError(t, err)
	require.Positive(t, runID)

	var count int
	require.NoError(t, archive.db.QueryRow(
		`SELECT COUNT(*) FROM records WHERE run_id = ? AND cpf = ?`,
		runID, "11111111111").Scan(&count))
	require.Equal(t, 2, count)

	var institution string
	require.NoError(t, archive.db.QueryRow(
		`SELECT institution FROM runs WHERE id = ?`, runID).Scan(&institution))
	require.Equal(t, "USJT", institution)
}

func TestSaveRunSeparatesRuns(t *testing.T) {
	archive, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer archive.Close()

	first, err := archive.SaveRun(context.Background(), "USJT", collector.MethodComplete, nil)
	require.NoError(t, err)
	second, err := archive.SaveRun(context.Background(), "UAM", collector.MethodFinancial, nil)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}
