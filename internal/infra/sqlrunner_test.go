package infra

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMarker(t *testing.T) {
	marker, body, err := ExtractMarker("\n  --sql 6d91d43e-da2e-4759-8e54-2f8be8d4a593\nselect 1;\n")
	require.NoError(t, err)
	assert.Equal(t, "6d91d43e-da2e-4759-8e54-2f8be8d4a593", marker)
	assert.Equal(t, "select 1;", body)

	for _, q := range []string{
		"",
		"select 1",
		"--sql not-a-uuid\nselect 1",
		"-- sql 6d91d43e-da2e-4759-8e54-2f8be8d4a593\nselect 1",
		"--sql 6D91D43E-DA2E-4759-8E54-2F8BE8D4A593\nselect 1",
	} {
		_, _, err := ExtractMarker(q)
		assert.ErrorIs(t, err, ErrMissingMarker, q)
	}
}

func TestSimpleRow(t *testing.T) {
	assert.True(t, IsNoRows(NewSimpleRow(nil).Scan()))

	var got int
	require.NoError(t, NewSimpleRow(func(dest ...any) error {
		*dest[0].(*int) = 7
		return nil
	}).Scan(&got))
	assert.Equal(t, 7, got)

	boom := errors.New("boom")
	assert.ErrorIs(t, ErrorRow{Err: boom}.Scan(), boom)
	assert.False(t, IsNoRows(boom))
	assert.True(t, IsNoRows(pgx.ErrNoRows))
}
