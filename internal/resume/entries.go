package resume

// Experience is a read-only view over one experience entry.
type Experience struct {
	Title            string
	Company          string
	StartDate        string
	Description      string
	Responsibilities []string
	Deliverables     []string
	SkillsUsed       []any
	Raw              map[string]any // nil when the entry is not an object
	Value            any            // the entry as stored
}

// ExperienceOf builds a view over a raw entry. Non-object entries yield an empty
// view that still carries the original Value.
func ExperienceOf(v any) Experience {
	m := Object(v)
	return Experience{
		Title:            Field(m, "title"),
		Company:          Field(m, "company"),
		StartDate:        Field(m, "start_date"),
		Description:      Field(m, "description"),
		Responsibilities: Strings(m["responsibilities"]),
		Deliverables:     Strings(m["deliverables"]),
		SkillsUsed:       List(m["skills_used"]),
		Raw:              m,
		Value:            v,
	}
}

// Label is "Title (Company)" with placeholders for missing parts.
func (e Experience) Label() string {
	title := e.Title
	if title == "" {
		title = "Untitled"
	}
	company := e.Company
	if company == "" {
		company = "N/A"
	}
	return title + " (" + company + ")"
}

// Project is a read-only view over one project entry.
type Project struct {
	Name      string
	Role      string
	Summary   string
	TechStack []string
	Raw       map[string]any
}

// ProjectOf builds a view over a raw project entry.
func ProjectOf(v any) Project {
	m := Object(v)
	return Project{
		Name:      Field(m, "name", "title"),
		Role:      Field(m, "role"),
		Summary:   Field(m, "summary", "description"),
		TechStack: Strings(m["tech_stack"]),
		Raw:       m,
	}
}

// Experiences returns views over every entry of the experience section.
func Experiences(doc Document) []Experience {
	raw := SectionList(doc, SectionExperience)
	out := make([]Experience, len(raw))
	for i, v := range raw {
		out[i] = ExperienceOf(v)
	}
	return out
}

// Projects returns views over every entry of the projects section.
func Projects(doc Document) []Project {
	raw := SectionList(doc, SectionProjects)
	out := make([]Project, len(raw))
	for i, v := range raw {
		out[i] = ProjectOf(v)
	}
	return out
}
