package s3minio

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPriceList(t *testing.T) {
	assert.True(t, IsPriceList("2025/Straumann.pdf"))
	assert.True(t, IsPriceList("Prices.XLSX"))
	assert.False(t, IsPriceList("folder/"))
	assert.False(t, IsPriceList("notes.txt"))
	assert.False(t, IsPriceList("README"))
}

func TestConfig(t *testing.T) {
	cfg := Config{Host: "minio", Port: "9000"}
	assert.Equal(t, "minio:9000", cfg.Endpoint())
	assert.True(t, cfg.Enabled())

	assert.False(t, (&Config{}).Enabled())
}

func TestPriceListRepository_NotConfigured(t *testing.T) {
	repo := New(slog.New(slog.NewTextHandler(io.Discard, nil)), nil, &Config{Bucket: "b"})

	_, err := repo.List(context.Background())
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = repo.Get(context.Background(), "a.pdf")
	require.ErrorIs(t, err, ErrNotConfigured)

	var nilRepo *PriceListRepository
	_, err = nilRepo.List(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
