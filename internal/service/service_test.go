package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"tasktracker/internal/access"
	"tasktracker/internal/models"
	"tasktracker/internal/repository/memory"
	"tasktracker/pkg/logger"
	"tasktracker/pkg/token"

	"github.com/stretchr/testify/require"
)

// mapCache is an in-process Cache that records what it holds.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) Get(_ context.Context, key string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	return ok && json.Unmarshal(raw, dst) == nil
}

func (c *mapCache) Set(_ context.Context, key string, v any) {
	raw, _ := json.Marshal(v)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
}

func (c *mapCache) Delete(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
}

func (c *mapCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

type recorder struct {
	mu     sync.Mutex
	events []models.TaskEvent
}

func (r *recorder) Notify(e models.TaskEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) last() models.TaskEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	store  *memory.Store
	cache  *mapCache
	events *recorder
	tasks  *TaskService
	users  *UserService
	auth   *AuthService
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.InitNop()
	f := &fixture{
		store:  memory.NewStore(),
		cache:  newMapCache(),
		events: &recorder{},
		clock:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time {
		f.clock = f.clock.Add(time.Second)
		return f.clock
	}
	f.tasks = NewTaskService(f.store.Tasks(), f.store.Users(), f.cache, f.events)
	f.tasks.now = now
	f.users = NewUserService(f.store.Users(), f.store.Tasks(), f.cache)
	f.users.now = now
	f.auth = NewAuthService(f.store.Users(), f.users, token.NewManager("test-secret", time.Hour, "tasktracker-test"), f.cache)
	f.auth.now = now
	return f
}

// user registers an account and returns it as an actor.
func (f *fixture) user(t *testing.T, name string) access.Actor {
	t.Helper()
	res, err := f.auth.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	return access.Actor{ID: res.User.ID, Role: res.User.Role}
}

func (f *fixture) admin(t *testing.T) access.Actor {
	t.Helper()
	u, err := f.users.Create(context.Background(), CreateUserInput{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: "password123",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	return access.Actor{ID: u.ID, Role: u.Role}
}

func (f *fixture) task(t *testing.T, creator access.Actor, in CreateTaskInput) models.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), creator.ID, in)
	require.NoError(t, err)
	return task
}

func ptr[T any](v T) *T { return &v }
