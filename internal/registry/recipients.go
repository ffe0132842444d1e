package registry

import (
	"sort"
	"sync"
)

// Recipients tracks every user the bot has seen during this process
// lifetime, keyed by Telegram user ID. It is rebuilt from scratch on each
// run and backs the admin broadcast and the stats view.
type Recipients struct {
	mu    sync.Mutex
	users map[int64]string
}

func NewRecipients() *Recipients {
	return &Recipients{users: map[int64]string{}}
}

// Register records the user. A zero id is ignored. An empty username
// never downgrades a handle learned earlier.
func (r *Recipients) Register(userID int64, username string) {
	if userID == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if username == "" {
		username = r.users[userID]
	}
	r.users[userID] = username
}

// IDs returns a sorted snapshot of all registered user IDs. The order is
// deterministic so a broadcast walks recipients predictably.
func (r *Recipients) IDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len reports how many users are known.
func (r *Recipients) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}
