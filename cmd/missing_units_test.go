package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportMissingUnits(t *testing.T) {
	useTestConfig(t)
	st := seededStore(t)

	var buf bytes.Buffer
	n, err := exportMissingUnits(context.Background(), st, "", &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "10,c4,"), lines[1])
}

func TestExportMissingUnits_OtherShop(t *testing.T) {
	useTestConfig(t)
	st := seededStore(t)

	var buf bytes.Buffer
	n, err := exportMissingUnits(context.Background(), st, "20", &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
}
