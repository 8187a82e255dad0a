package v1

import (
	"context"
	"net/http"
	"testing"

	"tasktracker/configs"
	"tasktracker/internal/config"
	"tasktracker/internal/repository"
	"tasktracker/pkg/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPostgresEndToEnd runs the API against the database named by
// DB_NAME_TEST. It is skipped when that variable is not set.
func TestPostgresEndToEnd(t *testing.T) {
	cfg := configs.LoadConfig()
	if cfg.DBNameTest == "" || testing.Short() {
		t.Skip("DB_NAME_TEST not set")
	}
	ctx := context.Background()
	db, err := database.Open(ctx, database.DSN(cfg, cfg.DBNameTest))
	require.NoError(t, err)
	require.NoError(t, repository.CreateTablesIfNotExist(ctx, db))

	cfg.RateLimitMax = 0
	cfg.AdminEmail, cfg.AdminPassword = "", ""
	deps := config.NewWithDB(cfg, db)
	go deps.Hub.Run()
	t.Cleanup(func() {
		// kosongkan database setelah test selesai
		_ = repository.DeleteAllTables(ctx, db)
		deps.Close()
	})
	a := &testApp{app: NewApp(deps), deps: deps}

	alice := a.register(t, "pg_alice")
	bob := a.register(t, "pg_bob")
	task := a.createTask(t, alice, map[string]any{"title": "Stored in postgres", "description": "urgent", "assignedTo": bob.ID})

	status, env := a.do(t, http.MethodGet, "/api/v1/tasks?search=URGENT", bob.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, *env.Count)

	status, _ = a.do(t, http.MethodPatch, "/api/v1/tasks/"+task.ID+"/toggle-complete", bob.Token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = a.do(t, http.MethodGet, "/api/v1/tasks/stats", alice.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]int{"total": 1, "completed": 1, "pending": 0, "inProgress": 0}, decode[map[string]int](t, env))

	status, _ = a.do(t, http.MethodGet, "/api/v1/tasks/not-a-uuid", alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}
