package assignee

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/catering-ops/pkg/core/model"
	"github.com/jakechorley/catering-ops/pkg/db"
)

// mockLookup implements db.AssigneeLookup
type mockLookup struct {
	users    map[string]*db.UserMetadata
	workers  map[string]*db.WorkerProfile
	maxDelay time.Duration

	inFlight    int32
	maxInFlight int32
	mu          sync.Mutex
	calls       int
}

func (m *mockLookup) enter() {
	n := atomic.AddInt32(&m.inFlight, 1)
	for {
		max := atomic.LoadInt32(&m.maxInFlight)
		if n <= max || atomic.CompareAndSwapInt32(&m.maxInFlight, max, n) {
			break
		}
	}
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.maxDelay > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(m.maxDelay))))
	}
}

func (m *mockLookup) leave() {
	atomic.AddInt32(&m.inFlight, -1)
}

func (m *mockLookup) GetUserMetadata(ctx context.Context, userID string) (*db.UserMetadata, error) {
	m.enter()
	defer m.leave()
	if meta, ok := m.users[userID]; ok {
		return meta, nil
	}
	return nil, fmt.Errorf("user %s: %w", userID, db.ErrNotFound)
}

func (m *mockLookup) GetWorkerProfile(ctx context.Context, workerProfileID string) (*db.WorkerProfile, error) {
	m.enter()
	defer m.leave()
	if profile, ok := m.workers[workerProfileID]; ok {
		return profile, nil
	}
	return nil, fmt.Errorf("worker %s: %w", workerProfileID, db.ErrNotFound)
}

func strPtr(s string) *string { return &s }

func TestResolveAssignees_TeamMemberAndWorker(t *testing.T) {
	lookup := &mockLookup{
		users: map[string]*db.UserMetadata{
			"u1": {ID: "u1", FullName: "Jane Doe", Email: "jane@x.com"},
		},
		workers: map[string]*db.WorkerProfile{
			"w1": {ID: "w1", Name: "Bob Worker", Phone: "555-0100"},
		},
	}
	r := NewResolver(lookup, zap.NewNop(), 4)

	shiftA := db.Shift{ID: "A", UserID: "u1", Status: model.ShiftScheduled}
	shiftB := db.Shift{ID: "B", WorkerProfileID: "w1", Status: model.ShiftScheduled}

	result := r.ResolveAssignees(context.Background(), []db.Shift{shiftA, shiftB})

	require.Len(t, result, 2)
	assert.Equal(t, EnrichedShift{
		Shift: shiftA,
		Assignee: model.ResolvedAssignee{
			Name:    "Jane Doe",
			Contact: strPtr("jane@x.com"),
			Type:    model.AssigneeTeamMember,
		},
	}, result[0])
	assert.Equal(t, EnrichedShift{
		Shift: shiftB,
		Assignee: model.ResolvedAssignee{
			Name:    "Bob Worker",
			Contact: strPtr("555-0100"),
			Type:    model.AssigneeWorker,
		},
	}, result[1])
}

func TestResolveAssignees_SentinelFallbacks(t *testing.T) {
	r := NewResolver(&mockLookup{}, zap.NewNop(), 4)

	result := r.ResolveAssignees(context.Background(), []db.Shift{
		{ID: "missing-user", UserID: "ghost"},
		{ID: "missing-worker", WorkerProfileID: "ghost"},
		{ID: "nobody"},
	})
	require.Len(t, result, 3)

	user := result[0].Assignee
	assert.Equal(t, "Unknown User", user.Name)
	require.NotNil(t, user.Contact)
	assert.Equal(t, "", *user.Contact)
	assert.Equal(t, model.AssigneeTeamMember, user.Type)

	worker := result[1].Assignee
	assert.Equal(t, "Unknown Worker", worker.Name)
	assert.Nil(t, worker.Contact)
	assert.Equal(t, model.AssigneeWorker, worker.Type)

	nobody := result[2].Assignee
	assert.Equal(t, "Unassigned", nobody.Name)
	assert.Nil(t, nobody.Contact)
	assert.Equal(t, model.AssigneeUnassigned, nobody.Type)
}

func TestResolveAssignees_DisplayNameFallbacks(t *testing.T) {
	lookup := &mockLookup{
		users: map[string]*db.UserMetadata{
			"email-only": {ID: "email-only", Email: "chef.maria@example.com"},
			"empty":      {ID: "empty"},
			"avatar":     {ID: "avatar", FullName: "Ana", Email: "ana@example.com", AvatarURL: "https://cdn/ana.png"},
		},
		workers: map[string]*db.WorkerProfile{
			"no-phone": {ID: "no-phone", Name: "Carlos"},
		},
	}
	r := NewResolver(lookup, zap.NewNop(), 2)

	result := r.ResolveAssignees(context.Background(), []db.Shift{
		{ID: "1", UserID: "email-only"},
		{ID: "2", UserID: "empty"},
		{ID: "3", UserID: "avatar"},
		{ID: "4", WorkerProfileID: "no-phone"},
	})

	assert.Equal(t, "chef.maria", result[0].Assignee.Name)
	assert.Equal(t, "chef.maria@example.com", *result[0].Assignee.Contact)

	assert.Equal(t, "Unknown User", result[1].Assignee.Name)
	assert.Equal(t, "", *result[1].Assignee.Contact)

	assert.Equal(t, "Ana", result[2].Assignee.Name)
	require.NotNil(t, result[2].Assignee.Avatar)
	assert.Equal(t, "https://cdn/ana.png", *result[2].Assignee.Avatar)

	assert.Equal(t, "Carlos", result[3].Assignee.Name)
	assert.Nil(t, result[3].Assignee.Contact)
}

func TestResolveAssignees_PreservesOrder(t *testing.T) {
	lookup := &mockLookup{
		users:    map[string]*db.UserMetadata{},
		workers:  map[string]*db.WorkerProfile{},
		maxDelay: 3 * time.Millisecond,
	}

	var shifts []db.Shift
	for i := 0; i < 60; i++ {
		id := fmt.Sprintf("shift-%02d", i)
		switch i % 4 {
		case 0:
			userID := fmt.Sprintf("u%d", i)
			lookup.users[userID] = &db.UserMetadata{ID: userID, FullName: "User " + userID}
			shifts = append(shifts, db.Shift{ID: id, UserID: userID})
		case 1:
			workerID := fmt.Sprintf("w%d", i)
			lookup.workers[workerID] = &db.WorkerProfile{ID: workerID, Name: "Worker " + workerID}
			shifts = append(shifts, db.Shift{ID: id, WorkerProfileID: workerID})
		case 2:
			shifts = append(shifts, db.Shift{ID: id, UserID: "missing"})
		default:
			shifts = append(shifts, db.Shift{ID: id})
		}
	}

	r := NewResolver(lookup, zap.NewNop(), 8)
	result := r.ResolveAssignees(context.Background(), shifts)

	require.Len(t, result, len(shifts))
	for i, enriched := range result {
		assert.Equal(t, shifts[i].ID, enriched.ID)
		switch i % 4 {
		case 0:
			assert.Equal(t, "User "+shifts[i].UserID, enriched.Assignee.Name)
		case 1:
			assert.Equal(t, "Worker "+shifts[i].WorkerProfileID, enriched.Assignee.Name)
		case 2:
			assert.Equal(t, model.UnknownUserName, enriched.Assignee.Name)
		default:
			assert.Equal(t, model.UnassignedName, enriched.Assignee.Name)
		}
	}
}

func TestResolveAssignees_BoundsConcurrency(t *testing.T) {
	lookup := &mockLookup{
		users:    map[string]*db.UserMetadata{"u1": {ID: "u1", FullName: "A"}},
		maxDelay: 2 * time.Millisecond,
	}
	shifts := make([]db.Shift, 40)
	for i := range shifts {
		shifts[i] = db.Shift{ID: fmt.Sprintf("s%d", i), UserID: "u1"}
	}

	r := NewResolver(lookup, zap.NewNop(), 3)
	r.ResolveAssignees(context.Background(), shifts)

	assert.LessOrEqual(t, atomic.LoadInt32(&lookup.maxInFlight), int32(3))
	assert.Equal(t, 40, lookup.calls)
}

func TestResolveAssignees_UnassignedNeedsNoLookup(t *testing.T) {
	lookup := &mockLookup{}
	r := NewResolver(lookup, zap.NewNop(), 0)

	result := r.ResolveAssignees(context.Background(), []db.Shift{{ID: "a"}, {ID: "b"}})

	assert.Len(t, result, 2)
	assert.Equal(t, 0, lookup.calls)
}

func TestResolveAssignees_Empty(t *testing.T) {
	r := NewResolver(&mockLookup{}, zap.NewNop(), 4)

	result := r.ResolveAssignees(context.Background(), nil)
	assert.Empty(t, result)
}
