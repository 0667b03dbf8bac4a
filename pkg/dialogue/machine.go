package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"advisor/pkg/advisor"
	"advisor/pkg/advisor/prompt"
	copytext "advisor/pkg/copy"
	"advisor/pkg/intent"
	"advisor/pkg/logx"
	"advisor/pkg/session"
)

// Caller-input errors. These surface before any session mutation and
// map to client errors at the transport layer.
var (
	ErrMissingSessionID = errors.New("session id is required")
	ErrMissingMessage   = errors.New("message is required")
	ErrMissingButton    = errors.New("button is required")
	ErrInvalidSelection = errors.New("idea selection out of range")
)

// endPhrases terminate a conversation turn regardless of step or modal
// flags. Matching is case-insensitive on the whole trimmed message.
var endPhrases = map[string]struct{}{
	"end":     {},
	"exit":    {},
	"quit":    {},
	"bye":     {},
	"goodbye": {},
	"stop":    {},
}

// AdvisoryService is the generation surface the machine depends on.
// *advisor.Service satisfies it; tests substitute recorders.
type AdvisoryService interface {
	GenerateIdeas(ctx context.Context, p advisor.Profile) ([]advisor.Idea, error)
	GeneratePlan(ctx context.Context, idea advisor.Idea, p advisor.Profile) (advisor.Plan, error)
	GeneratePlanSection(ctx context.Context, n int, idea advisor.Idea, p advisor.Profile) (string, error)
	GenerateResourceTopic(ctx context.Context, n int, idea advisor.Idea, p advisor.Profile) (string, error)
	FindFundingSchemes(ctx context.Context, idea advisor.Idea, p advisor.Profile) (string, error)
	AnalyzeLocation(ctx context.Context, location, language string) (string, error)
	AnalyzeLocationForBusiness(ctx context.Context, idea advisor.Idea, p advisor.Profile) (string, error)
	Answer(ctx context.Context, question string, p advisor.Profile, ideaTitle, pdfExcerpt string) (string, error)
}

// Machine routes each turn through a fixed priority chain: end phrases,
// then modal numeric intercepts, then step dispatch. Exactly one code
// path handles any given turn.
type Machine struct {
	store    *session.Store
	advisory AdvisoryService
	text     *copytext.Table
	log      *logx.Logger
}

func NewMachine(store *session.Store, advisory AdvisoryService, text *copytext.Table, log *logx.Logger) *Machine {
	return &Machine{
		store:    store,
		advisory: advisory,
		text:     text,
		log:      log.WithComponent("dialogue"),
	}
}

// HandleMessage processes one free-text turn.
func (m *Machine) HandleMessage(ctx context.Context, sessionID, message, language string) (Response, error) {
	if strings.TrimSpace(sessionID) == "" {
		return Response{}, ErrMissingSessionID
	}
	msg := strings.TrimSpace(message)
	if msg == "" {
		return Response{}, ErrMissingMessage
	}

	ctx = advisor.WithSessionID(ctx, sessionID)

	snap := m.store.Update(sessionID, func(s *session.Session) {
		if language != "" {
			s.Language = copytext.Normalize(language)
		}
	})
	lang := snap.Language

	det := intent.Detect(msg)
	facts := intent.Extract(msg)
	m.store.AppendHistory(sessionID, session.Turn{
		Kind:     session.TurnMessage,
		Input:    msg,
		Intent:   string(det),
		Entities: facts.Entities(),
	})

	if _, ok := endPhrases[strings.ToLower(msg)]; ok {
		return m.farewell(lang, snap), nil
	}

	if n, ok := menuNumber(msg); ok {
		if snap.ModalFlags.DetailedPlanMode {
			return m.planSection(ctx, sessionID, lang, snap, n)
		}
		if snap.ModalFlags.DetailedResourceMode {
			return m.resourceTopic(ctx, sessionID, lang, snap, n)
		}
	}

	switch snap.Step {
	case session.StepInitial:
		if intent.IsGreeting(msg) {
			return m.greet(sessionID, lang), nil
		}
		return Response{
			Reply:   m.text.Text("type_hi", lang),
			Type:    TypeText,
			Context: snap.Context,
		}, nil
	case session.StepModeSelection:
		return m.offerModes(lang, snap), nil
	case session.StepCollectingName:
		return m.collectName(sessionID, lang, msg), nil
	case session.StepCollectingLocation:
		return m.collectLocation(sessionID, lang, msg), nil
	case session.StepCollectingInterests:
		return Response{
			Reply:   m.text.Textf("ask_for_interests", lang, map[string]string{"location": snap.Context.Location}),
			Type:    TypeButtons,
			Buttons: m.interestButtons(lang),
			Context: snap.Context,
		}, nil
	case session.StepAskingBudget:
		return Response{
			Reply:   m.text.Text("ask_budget", lang),
			Type:    TypeButtons,
			Buttons: m.budgetButtons(lang),
			Context: snap.Context,
		}, nil
	case session.StepReadyToGenerate:
		return Response{
			Reply:   m.text.Text("have_all_info", lang),
			Type:    TypeButtons,
			Buttons: []Button{m.btn("btn_show_ideas", "show_ideas", lang)},
			Context: snap.Context,
		}, nil
	case session.StepQuestionMode:
		return m.answerQuestion(ctx, sessionID, lang, snap, msg, facts)
	case session.StepLocationAnalysis:
		return m.analyzeTypedLocation(ctx, sessionID, lang, snap, msg)
	default:
		m.log.Warn("session %s in unknown step %q", sessionID, snap.Step)
		return m.offerModes(lang, snap), nil
	}
}

// greet moves the session to mode selection and offers the three
// journeys.
func (m *Machine) greet(sessionID, lang string) Response {
	snap := m.store.Update(sessionID, func(s *session.Session) {
		s.Step = session.StepModeSelection
	})
	return Response{
		Reply:   m.text.Text("greeting", lang),
		Type:    TypeButtons,
		Buttons: m.modeButtons(lang),
		Context: snap.Context,
	}
}

// offerModes re-presents the three journeys without touching the
// session. Journeys are entered through button clicks, never through
// free text, so the detected intent plays no part here.
func (m *Machine) offerModes(lang string, snap *session.Session) Response {
	return Response{
		Reply:   m.text.Text("greeting", lang),
		Type:    TypeButtons,
		Buttons: m.modeButtons(lang),
		Context: snap.Context,
	}
}

// collectName stores the raw trimmed message as the name. No parsing;
// "Sita from Pune" is a name, location extraction is advisory only.
func (m *Machine) collectName(sessionID, lang, msg string) Response {
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Context.Name = msg
		s.Step = session.StepCollectingLocation
	})
	return Response{
		Reply:   m.text.Textf("ask_for_city", lang, map[string]string{"name": msg}),
		Type:    TypeText,
		Context: out.Context,
	}
}

func (m *Machine) collectLocation(sessionID, lang, msg string) Response {
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Context.Location = msg
		s.Step = session.StepCollectingInterests
	})
	return Response{
		Reply:   m.text.Textf("ask_for_interests", lang, map[string]string{"location": msg}),
		Type:    TypeButtons,
		Buttons: m.interestButtons(lang),
		Context: out.Context,
	}
}

func (m *Machine) answerQuestion(ctx context.Context, sessionID, lang string, snap *session.Session, msg string, facts intent.Facts) (Response, error) {
	ideaTitle := ""
	if snap.Context.SelectedIdea != nil {
		ideaTitle = snap.Context.SelectedIdea.Title
	}
	answer, err := m.advisory.Answer(ctx, msg, snap.Context.Profile(lang), ideaTitle, snap.Context.UploadedPDF)
	if err != nil {
		m.log.Error("answer failed for session %s: %v", sessionID, err)
		return m.failure(lang, snap), nil
	}
	out := m.store.Update(sessionID, func(s *session.Session) {
		mergeFactsIfAbsent(&s.Context, facts)
	})
	return Response{
		Reply:   answer,
		Type:    TypeText,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: out.Context,
	}, nil
}

// analyzeTypedLocation stores the raw typed message as the location and
// analyzes it. The provider is called before committing anything, so a
// failed analysis leaves the session untouched; on success the new
// location overwrites any earlier one.
func (m *Machine) analyzeTypedLocation(ctx context.Context, sessionID, lang string, snap *session.Session, msg string) (Response, error) {
	analysis, err := m.advisory.AnalyzeLocation(ctx, msg, lang)
	if err != nil {
		m.log.Error("location analysis failed for session %s: %v", sessionID, err)
		return m.failure(lang, snap), nil
	}
	out := m.store.Update(sessionID, func(s *session.Session) {
		s.Context.Location = msg
		s.Context.DetectedLocation = msg
	})
	header := m.text.Textf("analysis_ready", lang, map[string]string{"location": msg})
	return Response{
		Reply:   header + "\n\n" + analysis,
		Type:    TypeAnalysis,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: out.Context,
	}, nil
}

// planSection serves one numbered plan section while detailed plan mode
// is active. The session itself is not mutated.
func (m *Machine) planSection(ctx context.Context, sessionID, lang string, snap *session.Session, n int) (Response, error) {
	if snap.Context.SelectedIdea == nil {
		return m.guidance("need_business_idea", lang, snap), nil
	}
	section, err := m.advisory.GeneratePlanSection(ctx, n, *snap.Context.SelectedIdea, snap.Context.Profile(lang))
	if err != nil {
		m.log.Error("plan section %d failed for session %s: %v", n, sessionID, err)
		return m.failure(lang, snap), nil
	}
	return Response{
		Reply:   section + "\n\n" + m.text.Text("select_section_prompt", lang),
		Type:    TypePlan,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: snap.Context,
	}, nil
}

func (m *Machine) resourceTopic(ctx context.Context, sessionID, lang string, snap *session.Session, n int) (Response, error) {
	if snap.Context.SelectedIdea == nil {
		return m.guidance("need_business_idea", lang, snap), nil
	}
	if snap.Context.Location == "" {
		return m.guidance("need_location_for_resources", lang, snap), nil
	}
	topic, err := m.advisory.GenerateResourceTopic(ctx, n, *snap.Context.SelectedIdea, snap.Context.Profile(lang))
	if err != nil {
		m.log.Error("resource topic %d failed for session %s: %v", n, sessionID, err)
		return m.failure(lang, snap), nil
	}
	return Response{
		Reply:   topic + "\n\n" + m.text.Text("resource_topic_prompt", lang),
		Type:    TypeResource,
		Buttons: []Button{m.btn("btn_back_to_resource_menu", "back_to_resource_menu", lang), m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: snap.Context,
	}, nil
}

func (m *Machine) farewell(lang string, snap *session.Session) Response {
	return Response{
		Reply:   m.text.Textf("goodbye_message", lang, map[string]string{"name": snap.Context.Name}),
		Type:    TypeFarewell,
		Buttons: []Button{m.btn("btn_restart_session", "restart_session", lang)},
		Context: snap.Context,
	}
}

// failure is the uniform provider-failure envelope. The session state
// it reports is whatever snapshot the caller held, untouched.
func (m *Machine) failure(lang string, snap *session.Session) Response {
	return Response{
		Reply:   m.text.Text("error_message", lang),
		Type:    TypeError,
		Context: snap.Context,
	}
}

func (m *Machine) guidance(key, lang string, snap *session.Session) Response {
	return Response{
		Reply:   m.text.Text(key, lang),
		Type:    TypeText,
		Buttons: []Button{m.btn("btn_back_to_menu", "back_to_menu", lang)},
		Context: snap.Context,
	}
}

func (m *Machine) btn(key, value, lang string) Button {
	return Button{Text: m.text.Text(key, lang), Value: value}
}

func (m *Machine) modeButtons(lang string) []Button {
	return []Button{
		m.btn("generate_business_btn", "generate_business", lang),
		m.btn("ask_question_btn", "ask_question", lang),
		m.btn("location_analysis_btn", "location_analysis", lang),
	}
}

func (m *Machine) interestButtons(lang string) []Button {
	interests := []string{"cooking", "sewing", "dairy", "farming", "beauty", "handicrafts", "teaching", "retail"}
	out := make([]Button, 0, len(interests))
	for _, it := range interests {
		out = append(out, m.btn("btn_"+it, it, lang))
	}
	return out
}

func (m *Machine) budgetButtons(lang string) []Button {
	return []Button{
		m.btn("budget_10000", "budget_10000", lang),
		m.btn("budget_50000", "budget_50000", lang),
		m.btn("budget_100000", "budget_100000", lang),
		m.btn("budget_200000", "budget_200000", lang),
	}
}

func (m *Machine) ideaButtons(lang string) []Button {
	return []Button{
		m.btn("btn_create_plan", "create_plan", lang),
		m.btn("btn_find_funding", "find_funding", lang),
		m.btn("btn_find_resources", "find_resources", lang),
		m.btn("btn_analyze_location", "analyze_location", lang),
		m.btn("btn_back_to_menu", "back_to_menu", lang),
	}
}

// planMenu renders the numbered section list shown when detailed plan
// mode opens.
func (m *Machine) planMenu(lang string) string {
	var b strings.Builder
	b.WriteString(m.text.Text("detailed_plan_title", lang))
	b.WriteString("\n\n")
	for i := 1; i <= len(prompt.PlanSectionTitles); i++ {
		fmt.Fprintf(&b, "%d. %s\n", i, prompt.PlanSectionTitles[i])
	}
	b.WriteString("\n")
	b.WriteString(m.text.Text("select_section_prompt", lang))
	return b.String()
}

func (m *Machine) resourceMenu(lang string) string {
	var b strings.Builder
	b.WriteString(m.text.Text("detailed_resource_title", lang))
	b.WriteString("\n\n")
	for i := 1; i <= len(prompt.ResourceTopicTitles); i++ {
		fmt.Fprintf(&b, "%d. %s\n", i, prompt.ResourceTopicTitles[i])
	}
	b.WriteString("\n")
	b.WriteString(m.text.Text("resource_topic_prompt", lang))
	return b.String()
}

// menuNumber parses a whole-message integer in the 1..10 menu range.
// "11" or "3rd" are not menu selections and fall through to step
// routing.
func menuNumber(msg string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(msg))
	if err != nil || n < 1 || n > 10 {
		return 0, false
	}
	return n, true
}

// mergeFactsIfAbsent folds extracted facts into context without
// overwriting anything the user already stated.
func mergeFactsIfAbsent(c *session.Context, f intent.Facts) {
	if c.Location == "" && f.Location != "" {
		c.Location = f.Location
	}
	if c.Budget == 0 && f.Budget > 0 {
		c.Budget = f.Budget
	}
	if c.Interests == "" && len(f.Interests) > 0 {
		c.Interests = strings.Join(f.Interests, ", ")
		if c.Category == "" && f.Category != "" {
			c.Category = f.Category
		}
	}
}
