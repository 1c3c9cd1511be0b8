package factory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Lakshya-serigor/droolsctl/internal/history"
)

func TestDisabledReturnsNil(t *testing.T) {
	sink, err := New(history.Config{})
	require.NoError(t, err)
	require.Nil(t, sink)
}

func TestSQLite(t *testing.T) {
	sink, err := New(history.Config{Type: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	require.NotNil(t, sink)
	require.NoError(t, sink.Close())
}

func TestUnknownType(t *testing.T) {
	_, err := New(history.Config{Type: "opensearch"})
	require.Error(t, err)
}
