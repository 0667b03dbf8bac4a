package session

import (
	"advisor/pkg/advisor"
)

// Context is the accumulated fact schema for a session. Fields are
// fixed and typed; collaborator flows have nowhere to stash unknown
// keys. Zero values mean the fact is not yet known.
type Context struct {
	Name              string         `json:"name,omitempty"`
	Location          string         `json:"location,omitempty"`
	Interests         string         `json:"interests,omitempty"`
	Category          string         `json:"category,omitempty"`
	Budget            int            `json:"budget,omitempty"`
	GeneratedIdeas    []advisor.Idea `json:"generated_ideas,omitempty"`
	SelectedIdea      *advisor.Idea  `json:"selected_idea,omitempty"`
	SelectedIdeaIndex *int           `json:"selected_idea_index,omitempty"`
	GeneratedPlan     *advisor.Plan  `json:"generated_plan,omitempty"`
	UploadedPDF       string         `json:"uploaded_pdf_content,omitempty"`
	UploadedPDFName   string         `json:"uploaded_pdf_name,omitempty"`
	DetectedLocation  string         `json:"detected_location,omitempty"`
}

// Patch carries a partial context update. Nil fields are left alone, so
// a merge can never silently clear a fact that is already set.
type Patch struct {
	Name              *string
	Location          *string
	Interests         *string
	Category          *string
	Budget            *int
	GeneratedIdeas    []advisor.Idea
	SelectedIdea      *advisor.Idea
	SelectedIdeaIndex *int
	GeneratedPlan     *advisor.Plan
	UploadedPDF       *string
	UploadedPDFName   *string
	DetectedLocation  *string
}

// Apply shallow-merges the patch into the context.
func (c *Context) Apply(p Patch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.Interests != nil {
		c.Interests = *p.Interests
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Budget != nil {
		c.Budget = *p.Budget
	}
	if p.GeneratedIdeas != nil {
		c.GeneratedIdeas = p.GeneratedIdeas
	}
	if p.SelectedIdea != nil {
		c.SelectedIdea = p.SelectedIdea
	}
	if p.SelectedIdeaIndex != nil {
		c.SelectedIdeaIndex = p.SelectedIdeaIndex
	}
	if p.GeneratedPlan != nil {
		c.GeneratedPlan = p.GeneratedPlan
	}
	if p.UploadedPDF != nil {
		c.UploadedPDF = *p.UploadedPDF
	}
	if p.UploadedPDFName != nil {
		c.UploadedPDFName = *p.UploadedPDFName
	}
	if p.DetectedLocation != nil {
		c.DetectedLocation = *p.DetectedLocation
	}
}

// Clone returns a deep copy of the context.
func (c Context) Clone() Context {
	out := c
	if c.GeneratedIdeas != nil {
		out.GeneratedIdeas = make([]advisor.Idea, len(c.GeneratedIdeas))
		copy(out.GeneratedIdeas, c.GeneratedIdeas)
	}
	if c.SelectedIdea != nil {
		idea := *c.SelectedIdea
		out.SelectedIdea = &idea
	}
	if c.SelectedIdeaIndex != nil {
		idx := *c.SelectedIdeaIndex
		out.SelectedIdeaIndex = &idx
	}
	if c.GeneratedPlan != nil {
		plan := *c.GeneratedPlan
		if c.GeneratedPlan.Sections != nil {
			plan.Sections = make([]advisor.PlanSection, len(c.GeneratedPlan.Sections))
			copy(plan.Sections, c.GeneratedPlan.Sections)
		}
		out.GeneratedPlan = &plan
	}
	return out
}

// Profile converts accumulated facts into the advisory prompt grounding.
func (c Context) Profile(language string) advisor.Profile {
	return advisor.Profile{
		Name:      c.Name,
		Location:  c.Location,
		Interests: c.Interests,
		Category:  c.Category,
		Budget:    c.Budget,
		Language:  language,
	}
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T {
	return &v
}
