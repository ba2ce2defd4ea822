package services

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"infinite-experiment/bouncer/internal/db"
	"infinite-experiment/bouncer/internal/db/repositories"
	"infinite-experiment/bouncer/internal/directory"
	"infinite-experiment/bouncer/internal/resolver"
)

// Mock Platform that tracks role membership
type mockPlatform struct {
	mu       sync.Mutex
	roles    map[string][]string
	adds     []string
	removes  []string
	messages []string
	addErr   error
}

func newMockPlatform() *mockPlatform {
	return &mockPlatform{roles: make(map[string][]string)}
}

func (m *mockPlatform) MemberRoles(ctx context.Context, guildID, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.roles[userID]), nil
}

func (m *mockPlatform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.adds = append(m.adds, userID+":"+roleID)
	if !slices.Contains(m.roles[userID], roleID) {
		m.roles[userID] = append(m.roles[userID], roleID)
	}
	return nil
}

func (m *mockPlatform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removes = append(m.removes, userID+":"+roleID)
	m.roles[userID] = slices.DeleteFunc(m.roles[userID], func(r string) bool { return r == roleID })
	return nil
}

func (m *mockPlatform) SendMessage(ctx context.Context, channelID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, channelID+":"+content)
	return nil
}

func (m *mockPlatform) addCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.adds)
}

type staticState struct {
	opCtx *resolver.OperatingContext
}

func (s staticState) Current() (*resolver.OperatingContext, bool) {
	return s.opCtx, s.opCtx != nil
}

var errPlatform = errors.New("discord: 500 internal server error")

func testContext() *resolver.OperatingContext {
	return &resolver.OperatingContext{
		Guild: directory.Guild{ID: "100", Name: "Test Guild", OwnerID: "OWNER"},
		Channels: resolver.Channels{
			InterviewsCategory: directory.Channel{ID: "200", Kind: directory.KindCategory},
			InterviewMarks:     directory.Channel{ID: "201", Kind: directory.KindText},
		},
		Roles: resolver.Roles{
			Interviewers:     []directory.Role{{ID: "300", Name: "Interviewer"}},
			PendingInterview: directory.Role{ID: "302"},
			OngoingInterview: directory.Role{ID: "303"},
			TextVerified:     directory.Role{ID: "304"},
			IDVerified:       directory.Role{ID: "305"},
		},
	}
}

func setupStore(t *testing.T) *repositories.RecordRepository {
	gdb, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repositories.NewRecordRepository(gdb)
}

var nsfwChannel = directory.Channel{ID: "400", Name: "after-dark", Kind: directory.KindText, NSFW: true}

func message(author string) MessageEvent {
	return MessageEvent{
		EventID:  "evt",
		GuildID:  "100",
		Regular:  true,
		Channel:  nsfwChannel,
		AuthorID: author,
	}
}
