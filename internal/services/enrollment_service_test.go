package services

import (
	"context"
	"sync"
	"testing"

	"infinite-experiment/bouncer/internal/common"
	"infinite-experiment/bouncer/internal/constants"
	"infinite-experiment/bouncer/internal/directory"
)

func TestEnrollmentService_HandleMessage_EnrollsOnce(t *testing.T) {
	store := setupStore(t)
	platform := newMockPlatform()
	svc := NewEnrollmentService(staticState{testContext()}, store, platform, nil, nil)
	ctx := context.Background()

	outcome, err := svc.HandleMessage(ctx, message("U1"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if outcome != OutcomeEnrolled {
		t.Errorf("Expected %s, got %s", OutcomeEnrolled, outcome)
	}

	rec, err := store.Find(ctx, "U1")
	if err != nil || rec == nil {
		t.Fatalf("Expected record for U1, got %v (%v)", rec, err)
	}
	if rec.Status != constants.StatusPending {
		t.Errorf("Expected pending, got %s", rec.Status)
	}

	outcome, _ = svc.HandleMessage(ctx, message("U1"))
	if outcome != OutcomeAlreadyEnrolled {
		t.Errorf("Expected %s on second message, got %s", OutcomeAlreadyEnrolled, outcome)
	}

	if platform.addCount() != 1 {
		t.Errorf("Expected pending role granted once, got %d grants", platform.addCount())
	}
	if len(platform.messages) != 1 {
		t.Errorf("Expected one mark notice, got %d", len(platform.messages))
	}
}

func TestEnrollmentService_HandleMessage_Concurrent(t *testing.T) {
	store := setupStore(t)
	platform := newMockPlatform()
	svc := NewEnrollmentService(staticState{testContext()}, store, platform, nil, nil)
	ctx := context.Background()

	const messages = 20
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = make(map[Outcome]int)
	)
	for i := 0; i < messages; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := svc.HandleMessage(ctx, message("U1"))
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			mu.Lock()
			outcomes[outcome]++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if outcomes[OutcomeEnrolled] != 1 {
		t.Errorf("Expected exactly one enrollment, got %v", outcomes)
	}
	if outcomes[OutcomeAlreadyEnrolled] != messages-1 {
		t.Errorf("Expected %d no-ops, got %v", messages-1, outcomes)
	}
	if platform.addCount() != 1 {
		t.Errorf("Expected a single pending role grant, got %d", platform.addCount())
	}
}

func TestEnrollmentService_HandleMessage_Filters(t *testing.T) {
	sfw := nsfwChannel
	sfw.NSFW = false

	tests := []struct {
		name   string
		mutate func(*MessageEvent)
	}{
		{"system message", func(e *MessageEvent) { e.Regular = false }},
		{"direct message", func(e *MessageEvent) { e.GuildID = "" }},
		{"other guild", func(e *MessageEvent) { e.GuildID = "999" }},
		{"sfw channel", func(e *MessageEvent) { e.Channel = sfw }},
		{"nsfw category", func(e *MessageEvent) {
			e.Channel = directory.Channel{ID: "200", Kind: directory.KindCategory, NSFW: true}
		}},
		{"owner", func(e *MessageEvent) { e.AuthorID = "OWNER" }},
		{"bot", func(e *MessageEvent) { e.AuthorBot = true }},
		{"interviewer", func(e *MessageEvent) { e.AuthorRoles = []string{"999", "300"} }},
		{"text verified without record", func(e *MessageEvent) { e.AuthorRoles = []string{"304"} }},
		{"id verified without record", func(e *MessageEvent) { e.AuthorRoles = []string{"999", "305"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := setupStore(t)
			platform := newMockPlatform()
			svc := NewEnrollmentService(staticState{testContext()}, store, platform, nil, nil)
			ctx := context.Background()

			ev := message("U1")
			tt.mutate(&ev)

			outcome, err := svc.HandleMessage(ctx, ev)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if outcome != OutcomeIgnored {
				t.Errorf("Expected %s, got %s", OutcomeIgnored, outcome)
			}
			if rec, _ := store.Find(ctx, ev.AuthorID); rec != nil {
				t.Errorf("Expected no record, got %+v", rec)
			}
			if platform.addCount() != 0 || len(platform.messages) != 0 {
				t.Errorf("Expected no role grants or notices, got %v and %v", platform.adds, platform.messages)
			}
		})
	}
}

func TestEnrollmentService_HandleMessage_NoContext(t *testing.T) {
	store := setupStore(t)
	svc := NewEnrollmentService(staticState{}, store, newMockPlatform(), nil, nil)
	ctx := context.Background()

	outcome, err := svc.HandleMessage(ctx, message("U1"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if outcome != OutcomeDeferred {
		t.Errorf("Expected %s, got %s", OutcomeDeferred, outcome)
	}
	if rec, _ := store.Find(ctx, "U1"); rec != nil {
		t.Error("Expected no record to be written without a context")
	}
}

func TestEnrollmentService_HandleMessage_GrantFailureKeepsRecord(t *testing.T) {
	store := setupStore(t)
	platform := newMockPlatform()
	platform.addErr = errPlatform
	svc := NewEnrollmentService(staticState{testContext()}, store, platform, nil, nil)
	ctx := context.Background()

	outcome, err := svc.HandleMessage(ctx, message("U1"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if outcome != OutcomeEnrolled {
		t.Errorf("Expected %s, got %s", OutcomeEnrolled, outcome)
	}
	if rec, _ := store.Find(ctx, "U1"); rec == nil || rec.Status != constants.StatusPending {
		t.Errorf("Expected pending record despite grant failure, got %+v", rec)
	}
}

func TestEnrollmentService_HandleMessage_CacheShortCircuits(t *testing.T) {
	store := setupStore(t)
	cache := common.NewCacheService(0, 0)
	svc := NewEnrollmentService(staticState{testContext()}, store, newMockPlatform(), cache, nil)
	ctx := context.Background()

	if _, err := svc.HandleMessage(ctx, message("U1")); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, ok := cache.Get(string(constants.CachePrefixEnrolled) + "U1"); !ok {
		t.Fatal("Expected enrolled user to be cached")
	}

	outcome, _ := svc.HandleMessage(ctx, message("U1"))
	if outcome != OutcomeAlreadyEnrolled {
		t.Errorf("Expected %s, got %s", OutcomeAlreadyEnrolled, outcome)
	}
}

// completeInterview drives userID to a final status through the store.
func completeInterview(t *testing.T, svc *InterviewService, userID string, typ constants.InterviewType, outcome constants.VerificationStatus) {
	t.Helper()
	ctx := context.Background()
	opCtx := testContext()

	if _, err := svc.store.InsertPending(ctx, userID); err != nil {
		t.Fatalf("Failed to insert pending record: %v", err)
	}
	if _, err := svc.Start(ctx, opCtx, "INTERVIEWER", Target{UserID: userID}, typ); err != nil {
		t.Fatalf("Failed to start interview: %v", err)
	}
	if _, err := svc.Complete(ctx, opCtx, "INTERVIEWER", userID, outcome); err != nil {
		t.Fatalf("Failed to complete interview: %v", err)
	}
}

func TestEnrollmentService_HandleMemberJoin_RestoresText(t *testing.T) {
	store := setupStore(t)
	completeInterview(t, NewInterviewService(store, nil, nil), "U1", constants.InterviewTypeText, constants.StatusApproved)

	platform := newMockPlatform()
	svc := NewEnrollmentService(staticState{testContext()}, store, platform, nil, nil)
	ctx := context.Background()
	join := MemberJoinEvent{EventID: "evt", GuildID: "100", UserID: "U1"}

	outcome, err := svc.HandleMemberJoin(ctx, join)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if outcome != OutcomeRestored {
		t.Errorf("Expected %s, got %s", OutcomeRestored, outcome)
	}
	if len(platform.adds) != 1 || platform.adds[0] != "U1:304" {
		t.Errorf("Expected text verified role grant, got %v", platform.adds)
	}

	// duplicate gateway delivery
	outcome, err = svc.HandleMemberJoin(ctx, join)
	if err != nil {
		t.Fatalf("Expected no error on duplicate join, got %v", err)
	}
	if outcome != OutcomeAlreadyHeld {
		t.Errorf("Expected %s, got %s", OutcomeAlreadyHeld, outcome)
	}
	if platform.addCount() != 1 {
		t.Errorf("Expected exactly one grant, got %d", platform.addCount())
	}
}

func TestEnrollmentService_HandleMemberJoin_IDRejoinTwice(t *testing.T) {
	store := setupStore(t)
	completeInterview(t, NewInterviewService(store, nil, nil), "U2", constants.InterviewTypeID, constants.StatusApproved)

	platform := newMockPlatform()
	svc := NewEnrollmentService(staticState{testContext()}, store, platform, nil, nil)
	ctx := context.Background()
	join := MemberJoinEvent{EventID: "evt", GuildID: "100", UserID: "U2"}

	first, err := svc.HandleMemberJoin(ctx, join)
	if err != nil || first != OutcomeRestored {
		t.Fatalf("Expected restored, got %s (%v)", first, err)
	}
	second, err := svc.HandleMemberJoin(ctx, join)
	if err != nil || second != OutcomeAlreadyHeld {
		t.Fatalf("Expected already held, got %s (%v)", second, err)
	}
	if len(platform.adds) != 1 || platform.adds[0] != "U2:305" {
		t.Errorf("Expected a single id verified grant, got %v", platform.adds)
	}
}

func TestEnrollmentService_HandleMemberJoin_NoInterview(t *testing.T) {
	store := setupStore(t)
	platform := newMockPlatform()
	svc := NewEnrollmentService(staticState{testContext()}, store, platform, nil, nil)

	outcome, err := svc.HandleMemberJoin(context.Background(), MemberJoinEvent{GuildID: "100", UserID: "U3"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if outcome != OutcomeNotInterviewed {
		t.Errorf("Expected %s, got %s", OutcomeNotInterviewed, outcome)
	}
	if platform.addCount() != 0 {
		t.Error("Expected no role grants")
	}
}

func TestEnrollmentService_HandleMemberJoin_Rejected(t *testing.T) {
	store := setupStore(t)
	completeInterview(t, NewInterviewService(store, nil, nil), "U4", constants.InterviewTypeText, constants.StatusRejected)

	platform := newMockPlatform()
	svc := NewEnrollmentService(staticState{testContext()}, store, platform, nil, nil)

	outcome, err := svc.HandleMemberJoin(context.Background(), MemberJoinEvent{GuildID: "100", UserID: "U4"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if outcome != OutcomeNotApproved {
		t.Errorf("Expected %s, got %s", OutcomeNotApproved, outcome)
	}
	if platform.addCount() != 0 {
		t.Error("Expected no role grants for a rejected member")
	}
}

func TestEnrollmentService_HandleMemberJoin_GrantFailure(t *testing.T) {
	store := setupStore(t)
	completeInterview(t, NewInterviewService(store, nil, nil), "U5", constants.InterviewTypeText, constants.StatusApproved)

	platform := newMockPlatform()
	platform.addErr = errPlatform
	svc := NewEnrollmentService(staticState{testContext()}, store, platform, nil, nil)

	outcome, err := svc.HandleMemberJoin(context.Background(), MemberJoinEvent{GuildID: "100", UserID: "U5"})
	if err == nil {
		t.Fatal("Expected grant error to be returned")
	}
	if outcome != OutcomeFailed {
		t.Errorf("Expected %s, got %s", OutcomeFailed, outcome)
	}
	if iv, _ := store.FindInterview(context.Background(), "U5"); iv == nil {
		t.Error("Expected interview record to survive a failed grant")
	}
}
