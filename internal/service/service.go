// Package service holds the use cases behind the HTTP handlers. Services
// validate input, consult the access policy, run the task lifecycle and keep
// the cache and the live event stream in step with the repositories.
package service

import (
	"time"

	"tasktracker/internal/models"
)

// Notifier receives task events after a successful write.
type Notifier interface {
	Notify(event models.TaskEvent)
}

type NopNotifier struct{}

func (NopNotifier) Notify(models.TaskEvent) {}

func utcNow() time.Time { return time.Now().UTC() }

// audienceOf lists the users an event about these task versions concerns.
func audienceOf(tasks ...models.Task) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	for _, t := range tasks {
		add(t.CreatedBy)
		if t.AssignedTo != nil {
			add(*t.AssignedTo)
		}
	}
	return out
}
