package main

import (
	"context"
	"testing"

	"nutrition-tracker/repositories/repotest"
	"nutrition-tracker/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecksIncludeImageStore(t *testing.T) {
	db := repotest.NewDB(t)
	checks := healthChecks(db, services.NewLocalImageStore(t.TempDir()))

	require.Contains(t, checks, "database")
	require.Contains(t, checks, "images")
	for name, p := range checks {
		assert.NoError(t, p.Ping(context.Background()), name)
	}
}
