package importer

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"mini-eats/internal/model"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// gzipLines gzips lines joined by newlines.
func gzipLines(t *testing.T, lines ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	for _, line := range lines {
		_, err := gz.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// recordLine encodes rec as one JSON line.
func recordLine(t *testing.T, rec Record) string {
	t.Helper()
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	return string(data)
}

// createCatalogFile writes a gzipped catalog file and returns its path.
func createCatalogFile(t *testing.T, filename string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), filename)
	require.NoError(t, os.WriteFile(path, gzipLines(t, lines...), 0o644))
	return path
}

func sampleRecord(slug string) Record {
	return Record{
		Slug:         slug,
		Name:         "Maquis " + slug,
		Address:      "Rue des Jardins",
		City:         "Abidjan",
		Category:     "ivoirien",
		DeliveryFee:  1000,
		MinimumOrder: 2000,
		Menu: []MenuItem{
			{Name: "Poulet braisé", Category: "grillades", Price: 4500},
			{Name: "Attiéké", Category: "accompagnements", Price: 1500},
		},
	}
}

// mockLoader is a function-backed Loader.
type mockLoader struct {
	loadFunc func(ctx context.Context, path string) ([]Record, error)
}

func (m *mockLoader) Load(ctx context.Context, path string) ([]Record, error) {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, path)
	}
	return nil, errors.New("not implemented")
}

// MockStore is a mock implementation of Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Import(ctx context.Context, restaurant *model.Restaurant, menu []model.Product) error {
	args := m.Called(ctx, restaurant, menu)
	return args.Error(0)
}
