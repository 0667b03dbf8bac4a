package dialogue

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor/pkg/advisor"
	"advisor/pkg/session"
)

func TestRestartIsIdempotent(t *testing.T) {
	m, _, store := newTestMachine(t)
	ctx := context.Background()

	store.Update("s1", func(s *session.Session) {
		s.Step = session.StepReadyToGenerate
		s.Mode = session.ModeGenerateBusiness
		s.ModalFlags.DetailedPlanMode = true
		s.Context.Name = "Sita"
		s.Context.Budget = 50000
	})

	first, err := m.HandleButton(ctx, "s1", "restart_session", "")
	require.NoError(t, err)
	second, err := m.HandleButton(ctx, "s1", "restart_session", "")
	require.NoError(t, err)

	assert.Equal(t, first.Context, second.Context)
	sess := store.GetOrCreate("s1")
	assert.Equal(t, session.StepInitial, sess.Step)
	assert.Equal(t, session.ModeNone, sess.Mode)
	assert.False(t, sess.ModalFlags.DetailedPlanMode)
	assert.Empty(t, sess.Context.Name)
	assert.Zero(t, sess.Context.Budget)
}

func TestBackToMenuPreservesContext(t *testing.T) {
	m, _, store := newTestMachine(t)
	ctx := context.Background()

	store.Update("s1", func(s *session.Session) {
		s.Step = session.StepQuestionMode
		s.Mode = session.ModeAskQuestion
		s.ModalFlags.DetailedPlanMode = true
		s.Context.Name = "Sita"
		s.Context.Location = "Nashik"
	})

	resp, err := m.HandleButton(ctx, "s1", "back_to_menu", "")
	require.NoError(t, err)

	assert.Equal(t, "Sita", resp.Context.Name)
	assert.Equal(t, "Nashik", resp.Context.Location)
	sess := store.GetOrCreate("s1")
	assert.Equal(t, session.StepModeSelection, sess.Step)
	assert.Equal(t, session.ModeNone, sess.Mode)
	assert.True(t, sess.ModalFlags.DetailedPlanMode)
}

func TestInterestButtonDerivesCategory(t *testing.T) {
	m, _, store := newTestMachine(t)

	resp, err := m.HandleButton(context.Background(), "s1", "cooking", "")
	require.NoError(t, err)

	assert.Equal(t, "cooking", resp.Context.Interests)
	assert.Equal(t, "food", resp.Context.Category)
	assert.Equal(t, session.StepAskingBudget, store.GetOrCreate("s1").Step)
	require.Len(t, resp.Buttons, 4)
}

func TestBudgetButtonMovesToReady(t *testing.T) {
	m, _, store := newTestMachine(t)

	resp, err := m.HandleButton(context.Background(), "s1", "budget_50000", "")
	require.NoError(t, err)

	assert.Equal(t, 50000, resp.Context.Budget)
	assert.Equal(t, session.StepReadyToGenerate, store.GetOrCreate("s1").Step)
	require.Len(t, resp.Buttons, 1)
	assert.Equal(t, "show_ideas", resp.Buttons[0].Value)
}

func TestShowIdeasRequiresProfile(t *testing.T) {
	m, stub, store := newTestMachine(t)

	resp, err := m.HandleButton(context.Background(), "s1", "show_ideas", "")
	require.NoError(t, err)

	assert.Empty(t, stub.Calls())
	assert.Empty(t, resp.Context.GeneratedIdeas)
	assert.Empty(t, store.GetOrCreate("s1").Context.GeneratedIdeas)
}

func TestShowIdeasStoresIdeasWithoutStepChange(t *testing.T) {
	m, stub, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Step = session.StepReadyToGenerate
		s.Context.Name = "Sita"
		s.Context.Location = "Nashik"
		s.Context.Interests = "cooking"
		s.Context.Budget = 50000
	})

	resp, err := m.HandleButton(context.Background(), "s1", "show_ideas", "")
	require.NoError(t, err)

	assert.Equal(t, TypeIdeas, resp.Type)
	assert.Equal(t, []string{"GenerateIdeas"}, stub.Calls())
	require.Len(t, resp.Context.GeneratedIdeas, 2)
	assert.Equal(t, session.StepReadyToGenerate, store.GetOrCreate("s1").Step)
}

func TestSelectIdeaOutOfRangeMutatesNothing(t *testing.T) {
	m, _, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Context.GeneratedIdeas = []advisor.Idea{{Title: "Tiffin Service"}}
	})

	_, err := m.SelectIdea(context.Background(), "s1", 5, "")
	assert.ErrorIs(t, err, ErrInvalidSelection)
	assert.Nil(t, store.GetOrCreate("s1").Context.SelectedIdea)
}

func TestSelectIdeaStoresSelection(t *testing.T) {
	m, _, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Context.GeneratedIdeas = []advisor.Idea{
			{Title: "Tiffin Service"},
			{Title: "Tailoring Unit"},
		}
	})

	resp, err := m.SelectIdea(context.Background(), "s1", 1, "")
	require.NoError(t, err)

	require.NotNil(t, resp.Context.SelectedIdea)
	assert.Equal(t, "Tailoring Unit", resp.Context.SelectedIdea.Title)
	require.NotNil(t, resp.Context.SelectedIdeaIndex)
	assert.Equal(t, 1, *resp.Context.SelectedIdeaIndex)

	values := make([]string, 0, len(resp.Buttons))
	for _, b := range resp.Buttons {
		values = append(values, b.Value)
	}
	assert.Contains(t, values, "create_plan")
	assert.Contains(t, values, "find_resources")
}

func TestCreatePlanWithoutIdeaGivesGuidance(t *testing.T) {
	m, stub, store := newTestMachine(t)

	resp, err := m.HandleButton(context.Background(), "s1", "create_plan", "")
	require.NoError(t, err)

	assert.Empty(t, stub.Calls())
	assert.Nil(t, store.GetOrCreate("s1").Context.GeneratedPlan)
	assert.Equal(t, TypeText, resp.Type)
}

func TestCreatePlanStoresPlanAndOpensPlanMode(t *testing.T) {
	m, stub, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Context.SelectedIdea = &advisor.Idea{Title: "Tiffin Service"}
	})

	resp, err := m.HandleButton(context.Background(), "s1", "create_plan", "")
	require.NoError(t, err)

	assert.Equal(t, TypePlan, resp.Type)
	assert.Equal(t, []string{"GeneratePlan"}, stub.Calls())
	sess := store.GetOrCreate("s1")
	require.NotNil(t, sess.Context.GeneratedPlan)
	assert.True(t, sess.ModalFlags.DetailedPlanMode)
}

func TestDetailedPlanMenuCallsNoProvider(t *testing.T) {
	m, stub, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Context.SelectedIdea = &advisor.Idea{Title: "Tiffin Service"}
	})

	resp, err := m.HandleButton(context.Background(), "s1", "detailed_business_plan", "")
	require.NoError(t, err)

	assert.Empty(t, stub.Calls())
	assert.True(t, store.GetOrCreate("s1").ModalFlags.DetailedPlanMode)
	assert.Contains(t, resp.Reply, "1.")
	assert.Contains(t, resp.Reply, "10.")
}

func TestFindResourcesGuardSkipsProviderAndFlag(t *testing.T) {
	m, stub, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Context.SelectedIdea = &advisor.Idea{Title: "Tiffin Service"}
	})

	resp, err := m.HandleButton(context.Background(), "s1", "find_resources", "")
	require.NoError(t, err)

	assert.Empty(t, stub.Calls())
	assert.False(t, store.GetOrCreate("s1").ModalFlags.DetailedResourceMode)
	assert.Equal(t, TypeText, resp.Type)
}

func TestFindResourcesOpensResourceMode(t *testing.T) {
	m, stub, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Context.SelectedIdea = &advisor.Idea{Title: "Tiffin Service"}
		s.Context.Location = "Nashik"
	})

	resp, err := m.HandleButton(context.Background(), "s1", "find_resources", "")
	require.NoError(t, err)

	assert.Empty(t, stub.Calls())
	assert.Equal(t, TypeResource, resp.Type)
	assert.True(t, store.GetOrCreate("s1").ModalFlags.DetailedResourceMode)
}

func TestFindFundingChangesNoState(t *testing.T) {
	m, stub, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Step = session.StepReadyToGenerate
		s.Context.SelectedIdea = &advisor.Idea{Title: "Tiffin Service"}
	})
	before := store.GetOrCreate("s1")

	resp, err := m.HandleButton(context.Background(), "s1", "find_funding", "")
	require.NoError(t, err)

	assert.Equal(t, TypeSchemes, resp.Type)
	assert.Equal(t, []string{"FindFundingSchemes"}, stub.Calls())
	after := store.GetOrCreate("s1")
	assert.Equal(t, before.Step, after.Step)
	assert.Equal(t, before.ModalFlags, after.ModalFlags)
	assert.Equal(t, before.Context, after.Context)
}

func TestAnalyzeLocationButtonRequiresIdeaAndLocation(t *testing.T) {
	m, stub, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Context.SelectedIdea = &advisor.Idea{Title: "Tiffin Service"}
	})

	resp, err := m.HandleButton(context.Background(), "s1", "analyze_location", "")
	require.NoError(t, err)

	assert.Empty(t, stub.Calls())
	assert.Equal(t, TypeText, resp.Type)
}

func TestRecordUploadStoresDocument(t *testing.T) {
	m, _, store := newTestMachine(t)

	resp, err := m.RecordUpload("s1", "report.pdf", "extracted text", "")
	require.NoError(t, err)

	assert.Contains(t, resp.Reply, "report.pdf")
	sess := store.GetOrCreate("s1")
	assert.Equal(t, "extracted text", sess.Context.UploadedPDF)
	assert.Equal(t, "report.pdf", sess.Context.UploadedPDFName)
}

func TestUnknownButtonReturnsMenu(t *testing.T) {
	m, _, store := newTestMachine(t)

	store.Update("s1", func(s *session.Session) {
		s.Context.Name = "Sita"
	})

	resp, err := m.HandleButton(context.Background(), "s1", "bogus_button", "")
	require.NoError(t, err)

	assert.Len(t, resp.Buttons, 3)
	assert.Equal(t, "Sita", store.GetOrCreate("s1").Context.Name)
}
