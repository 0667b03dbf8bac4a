package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor/pkg/logx"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s := NewStore(ttl, time.Minute, "en-IN", logx.NewLogger("test"))
	t.Cleanup(s.Stop)
	return s
}

func TestGetOrCreateDefaults(t *testing.T) {
	s := newTestStore(t, time.Hour)

	sess := s.GetOrCreate("abc")
	assert.Equal(t, "abc", sess.ID)
	assert.Equal(t, StepInitial, sess.Step)
	assert.Equal(t, ModeNone, sess.Mode)
	assert.Equal(t, "en-IN", sess.Language)
	assert.Empty(t, sess.History)
	assert.False(t, sess.ModalFlags.DetailedPlanMode)
}

func TestUpdateSeesLatestCommittedState(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.Update("id", func(sess *Session) { sess.Context.Name = "Asha" })
	got := s.Update("id", func(sess *Session) {
		// The prior commit must be visible here.
		sess.Context.Location = sess.Context.Name + "ville"
	})

	assert.Equal(t, "Asha", got.Context.Name)
	assert.Equal(t, "Ashaville", got.Context.Location)
}

func TestMergeContextPreservesExistingKeys(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.MergeContext("id", Patch{Name: Ptr("Asha")})
	ctx := s.MergeContext("id", Patch{Location: Ptr("Nashik")})

	assert.Equal(t, "Asha", ctx.Name)
	assert.Equal(t, "Nashik", ctx.Location)
}

func TestConcurrentMergesBothSurvive(t *testing.T) {
	s := newTestStore(t, time.Hour)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.MergeContext("same", Patch{Name: Ptr("Asha")})
	}()
	go func() {
		defer wg.Done()
		s.MergeContext("same", Patch{Location: Ptr("Nashik")})
	}()
	wg.Wait()

	sess := s.GetOrCreate("same")
	assert.Equal(t, "Asha", sess.Context.Name)
	assert.Equal(t, "Nashik", sess.Context.Location)
}

func TestConcurrentUpdatesCompose(t *testing.T) {
	s := newTestStore(t, time.Hour)

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(n int) {
			defer wg.Done()
			s.AppendHistory("busy", Turn{Kind: TurnMessage, Input: fmt.Sprintf("turn %d", n)})
		}(i)
	}
	wg.Wait()

	sess := s.GetOrCreate("busy")
	assert.Len(t, sess.History, workers)
}

func TestExpiredSessionBehavesAsAbsent(t *testing.T) {
	s := newTestStore(t, 20*time.Millisecond)

	s.Update("id", func(sess *Session) {
		sess.Step = StepQuestionMode
		sess.Context.Name = "Asha"
	})

	time.Sleep(50 * time.Millisecond)

	// Expired mid-flight: the mutator applies to a fresh record.
	got := s.Update("id", func(sess *Session) {
		sess.Context.Location = "Pune"
	})
	assert.Equal(t, StepInitial, got.Step)
	assert.Empty(t, got.Context.Name)
	assert.Equal(t, "Pune", got.Context.Location)
}

func TestAppendHistoryStampsEntries(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.AppendHistory("id", Turn{Kind: TurnButton, Input: "show_ideas"})
	sess := s.GetOrCreate("id")

	require.Len(t, sess.History, 1)
	assert.NotEmpty(t, sess.History[0].ID)
	assert.False(t, sess.History[0].Timestamp.IsZero())
}

func TestSnapshotsAreIsolated(t *testing.T) {
	s := newTestStore(t, time.Hour)

	snap := s.Update("id", func(sess *Session) { sess.Context.Name = "Asha" })
	snap.Context.Name = "tampered"
	snap.History = append(snap.History, Turn{Input: "ghost"})

	fresh := s.GetOrCreate("id")
	assert.Equal(t, "Asha", fresh.Context.Name)
	assert.Empty(t, fresh.History)
}

func TestRestartClearsContextAndFlags(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.Update("id", func(sess *Session) {
		sess.Step = StepReadyToGenerate
		sess.Mode = ModeGenerateBusiness
		sess.ModalFlags.DetailedPlanMode = true
		sess.Context.Name = "Asha"
	})

	got := s.Update("id", func(sess *Session) { sess.Restart() })
	assert.Equal(t, StepInitial, got.Step)
	assert.Equal(t, ModeNone, got.Mode)
	assert.Equal(t, ModalFlags{}, got.ModalFlags)
	assert.Equal(t, Context{}, got.Context)
	assert.Equal(t, "id", got.ID)
}

func TestLenCountsLiveSessions(t *testing.T) {
	s := newTestStore(t, time.Hour)

	s.GetOrCreate("a")
	s.GetOrCreate("b")
	assert.Equal(t, 2, s.Len())
}
