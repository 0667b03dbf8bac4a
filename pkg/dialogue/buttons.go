package dialogue

import (
	"context"
	"strconv"
	"strings"

	"advisor/pkg/advisor"
	copytext "advisor/pkg/copy"
	"advisor/pkg/intent"
	"advisor/pkg/session"
)

// HandleButton processes one button click. Button values are the
// routing keys; display text is presentation only.
func (m *Machine) HandleButton(ctx context.Context, sessionID, button, language string) (Response, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Response{}, ErrMissingSessionID
	}
	button = strings.TrimSpace(button)
	if button == "" {
		return Response{}, ErrMissingButton
	}

	ctx = advisor.WithSessionID(ctx, sessionID)

	snap := m.store.Update(sessionID, func(s *session.Session) {
		if language != "" {
			s.Language = copytext.Normalize(language)
		}
	})
	lang := snap.Language

	m.store.AppendHistory(sessionID, session.Turn{
		Kind:  session.TurnButton,
		Input: button,
	})

	switch button {
	case "generate_business":
		return m.enterGenerateBusiness(sessionID, lang), nil
	case "ask_question":
		return m.enterAskQuestion(sessionID, lang), nil
	case "location_analysis":
		return m.enterLocationAnalysis(sessionID, lang), nil
	case "back_to_menu":
		return m.backToMenu(sessionID, lang), nil
	case "restart_session":
		return m.restart(sessionID, lang), nil
	case "show_ideas":
		return m.showIdeas(ctx, sessionID, lang, snap)
	case "create_plan":
		return m.createPlan(ctx, sessionID, lang, snap)
	case "detailed_business_plan", "view_detailed_sections":
		return m.openPlanMenu(sessionID, lang, snap), nil
	case "view_business_plan":
		return m.viewPlan(lang, snap), nil
	case "find_funding", "view_schemes":
		return m.findFunding(ctx, sessionID, lang, snap)
	case "find_resources", "back_to_resource_menu":
		return m.openResourceMenu(sessionID, lang, snap), nil
	case "analyze_location":
		return m.analyzeForBusiness(ctx, sessionID, lang, snap)
	}

	if strings.HasPrefix(button, "budget_") {
		if amount, err := strconv.Atoi(strings.TrimPrefix(button, "budget_")); err == nil && amount > 0 {
			return m.setBudget(sessionID, lang, amount), nil
		}
	}
	if isInterestValue(button) {
		return m.setInterest(sessionID, lang, button), nil
	}

	m.log.Warn("session %s clicked unknown button %q", sessionID, button)
	return Response{
		Reply:   m.text.Text("next_steps", lang),
		Type:    TypeButtons,
		Buttons: m.modeButtons(lang),
		Context: snap.Context,
	}, nil
}

// SelectIdea picks one of the previously generated ideas by zero-based
// index. An out-of-range index is a caller error and mutates nothing.
func (m *Machine) SelectIdea(ctx context.Context, sessionID string, index int, language string) (Response, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Response{}, ErrMissingSessionID
	}

	snap := m.store.Update(sessionID, func(s *session.Session) {
		if language != "" {
			s.Language = copytext.Normalize(language)
		}
	})
	lang := snap.Language

	if index < 0 || index >= len(snap.Context.GeneratedIdeas) {
		return Response{}, ErrInvalidSelection
	}
	idea := snap.Context.GeneratedIdeas[index]

	out := m.store.Update(sessionID, func(s *session.Session) {
		if index >= len(s.Context.GeneratedIdeas) {
			return
		}
		picked := s.Context.GeneratedIdeas[index]
		s.Context.SelectedIdea = &picked
		s.Context.SelectedIdeaIndex = session.Ptr(index)
	})
	m.store.AppendHistory(sessionID, session.Turn{
		Kind:  session.TurnSelection,
		Input: strconv.Itoa(index),
		Entities: map[string]string{
			"idea": idea.Title,
		},
	})

	return Response{
		Reply:   m.text.Textf("idea_selected", lang, map[string]string{"ideaTitle": idea.Title}),
		Type:    TypeButtons,
		Buttons: m.ideaButtons(lang),
		Payload: idea,
		Context: out.Context,
	}, nil
}

func (m *Machine) enterGenerateBusiness(sessionID, lang string) Response {
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Mode = session.ModeGenerateBusiness
		s.Step = session.StepCollectingName
	})
	return Response{
		Reply:   m.text.Text("generate_business_intro", lang),
		Type:    TypeText,
		Context: out.Context,
	}
}

func (m *Machine) enterAskQuestion(sessionID, lang string) Response {
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Mode = session.ModeAskQuestion
		s.Step = session.StepQuestionMode
	})
	return Response{
		Reply:   m.text.Text("pratibha_intro", lang),
		Type:    TypeText,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: out.Context,
	}
}

func (m *Machine) enterLocationAnalysis(sessionID, lang string) Response {
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Mode = session.ModeLocationAnalysis
		s.Step = session.StepLocationAnalysis
	})
	return Response{
		Reply:   m.text.Text("location_analysis_prompt", lang),
		Type:    TypeText,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: out.Context,
	}
}

// backToMenu returns to mode selection. Context and modal flags stay
// as they are; only a restart clears them.
func (m *Machine) backToMenu(sessionID, lang string) Response {
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Step = session.StepModeSelection
		s.Mode = session.ModeNone
	})
	return Response{
		Reply:   m.text.Text("next_steps", lang),
		Type:    TypeButtons,
		Buttons: m.modeButtons(lang),
		Context: out.Context,
	}
}

// restart is the one destructive reset. The session returns to the
// initial step with empty context; applying it twice leaves the session
// in the same state as applying it once.
func (m *Machine) restart(sessionID, lang string) Response {
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Restart()
	})
	return Response{
		Reply:   m.text.Text("type_hi", lang),
		Type:    TypeText,
		Context: out.Context,
	}
}

func (m *Machine) setInterest(sessionID, lang, interest string) Response {
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Context.Interests = interest
		s.Context.Category = intent.CategorizeInterest(interest)
		s.Step = session.StepAskingBudget
	})
	return Response{
		Reply:   m.text.Text("ask_budget", lang),
		Type:    TypeButtons,
		Buttons: m.budgetButtons(lang),
		Context: out.Context,
	}
}

func (m *Machine) setBudget(sessionID, lang string, amount int) Response {
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Context.Budget = amount
		s.Step = session.StepReadyToGenerate
	})
	return Response{
		Reply:   m.text.Text("have_all_info", lang),
		Type:    TypeButtons,
		Buttons: []Button{m.btn("btn_show_ideas", "show_ideas", lang)},
		Context: out.Context,
	}
}

// showIdeas generates ideas once the profile is complete. It stores
// the results but deliberately leaves the step alone, so the user can
// keep refining and regenerate.
func (m *Machine) showIdeas(ctx context.Context, sessionID, lang string, snap *session.Session) (Response, error) {
	c := snap.Context
	if c.Name == "" || c.Location == "" || c.Interests == "" {
		return m.guidance("need_profile_first", lang, snap), nil
	}
	ideas, err := m.advisory.GenerateIdeas(ctx, c.Profile(lang))
	if err != nil {
		m.log.Error("idea generation failed for session %s: %v", sessionID, err)
		return m.failure(lang, snap), nil
	}
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Context.GeneratedIdeas = ideas
	})
	return Response{
		Reply:   m.text.Text("ideas_ready", lang),
		Type:    TypeIdeas,
		Payload: ideas,
		Context: out.Context,
	}, nil
}

// createPlan generates the full plan for the selected idea and opens
// detailed plan mode so numeric replies fetch individual sections.
func (m *Machine) createPlan(ctx context.Context, sessionID, lang string, snap *session.Session) (Response, error) {
	if snap.Context.SelectedIdea == nil {
		return m.guidance("need_business_idea", lang, snap), nil
	}
	plan, err := m.advisory.GeneratePlan(ctx, *snap.Context.SelectedIdea, snap.Context.Profile(lang))
	if err != nil {
		m.log.Error("plan generation failed for session %s: %v", sessionID, err)
		return m.failure(lang, snap), nil
	}
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Context.GeneratedPlan = &plan
		s.ModalFlags.DetailedPlanMode = true
	})
	reply := m.text.Textf("plan_created", lang, map[string]string{"businessName": plan.BusinessName})
	return Response{
		Reply:   reply + "\n\n" + plan.Full,
		Type:    TypePlan,
		Buttons: []Button{
			m.btn("btn_view_detailed_sections", "detailed_business_plan", lang),
			m.btn("btn_find_funding", "find_funding", lang),
			m.btn("btn_find_resources", "find_resources", lang),
			m.btn("btn_back_to_menu", "back_to_menu", lang),
		},
		Payload: plan,
		Context: out.Context,
	}, nil
}

// openPlanMenu shows the ten-section menu without calling a provider.
func (m *Machine) openPlanMenu(sessionID, lang string, snap *session.Session) Response {
	if snap.Context.SelectedIdea == nil {
		return m.guidance("need_business_idea", lang, snap)
	}
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.ModalFlags.DetailedPlanMode = true
	})
	return Response{
		Reply:   m.planMenu(lang),
		Type:    TypeButtons,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: out.Context,
	}
}

func (m *Machine) viewPlan(lang string, snap *session.Session) Response {
	if snap.Context.GeneratedPlan == nil {
		return m.guidance("need_business_idea", lang, snap)
	}
	plan := *snap.Context.GeneratedPlan
	return Response{
		Reply:   plan.Full,
		Type:    TypePlan,
		Buttons: []Button{
			m.btn("btn_view_detailed_sections", "detailed_business_plan", lang),
			m.btn("btn_back_to_menu", "back_to_menu", lang),
		},
		Payload: plan,
		Context: snap.Context,
	}
}

// findFunding fetches matching schemes. No session state changes.
func (m *Machine) findFunding(ctx context.Context, sessionID, lang string, snap *session.Session) (Response, error) {
	if snap.Context.SelectedIdea == nil {
		return m.guidance("need_business_idea", lang, snap), nil
	}
	schemes, err := m.advisory.FindFundingSchemes(ctx, *snap.Context.SelectedIdea, snap.Context.Profile(lang))
	if err != nil {
		m.log.Error("funding lookup failed for session %s: %v", sessionID, err)
		return m.failure(lang, snap), nil
	}
	return Response{
		Reply:   m.text.Text("funding_intro", lang) + "\n\n" + schemes,
		Type:    TypeSchemes,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: snap.Context,
	}, nil
}

// openResourceMenu shows the ten resource topics. Both guards must
// pass before the modal flag is set; a failed guard leaves the session
// untouched and calls no provider.
func (m *Machine) openResourceMenu(sessionID, lang string, snap *session.Session) Response {
	if snap.Context.SelectedIdea == nil {
		return m.guidance("need_business_idea", lang, snap)
	}
	if snap.Context.Location == "" {
		return m.guidance("need_location_for_resources", lang, snap)
	}
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.ModalFlags.DetailedResourceMode = true
	})
	return Response{
		Reply:   m.resourceMenu(lang),
		Type:    TypeResource,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: out.Context,
	}
}

// analyzeForBusiness analyzes the stored location for the selected
// idea. No session state changes.
func (m *Machine) analyzeForBusiness(ctx context.Context, sessionID, lang string, snap *session.Session) (Response, error) {
	if snap.Context.SelectedIdea == nil {
		return m.guidance("need_business_idea", lang, snap), nil
	}
	if snap.Context.Location == "" {
		return m.guidance("need_location_for_resources", lang, snap), nil
	}
	analysis, err := m.advisory.AnalyzeLocationForBusiness(ctx, *snap.Context.SelectedIdea, snap.Context.Profile(lang))
	if err != nil {
		m.log.Error("business location analysis failed for session %s: %v", sessionID, err)
		return m.failure(lang, snap), nil
	}
	header := m.text.Textf("analysis_ready", lang, map[string]string{"location": snap.Context.Location})
	return Response{
		Reply:   header + "\n\n" + analysis,
		Type:    TypeAnalysis,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: snap.Context,
	}, nil
}

// RecordUpload stores extracted document text on the session and
// confirms to the user. Extraction happens at the transport layer.
func (m *Machine) RecordUpload(sessionID, fileName, content, language string) (Response, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Response{}, ErrMissingSessionID
	}
	out := m.store.Update(sessionID, func(s *session.Session) {
		if language != "" {
			s.Language = copytext.Normalize(language)
		}
		s.Context.UploadedPDF = content
		s.Context.UploadedPDFName = fileName
	})
	return Response{
		Reply:   m.text.Textf("pdf_uploaded_successfully", out.Language, map[string]string{"fileName": fileName}),
		Type:    TypeText,
		Context: out.Context,
	}, nil
}

var interestValues = map[string]struct{}{
	"cooking":     {},
	"sewing":      {},
	"dairy":       {},
	"farming":     {},
	"beauty":      {},
	"handicrafts": {},
	"teaching":    {},
	"retail":      {},
}

func isInterestValue(v string) bool {
	_, ok := interestValues[v]
	return ok
}
