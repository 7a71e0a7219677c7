package domain

// CourseFacts holds the structured course-administration data backing the
// deterministic answer templates (grading scale, activity weights, policies).
type CourseFacts struct {
	GradingScale     []GradeThreshold `yaml:"grading_scale"`
	GradedActivities []GradedActivity `yaml:"graded_activities"`
	TotalPoints      int              `yaml:"total_points"`
	Policies         []Policy         `yaml:"policies"`
}

type GradeThreshold struct {
	Grade      string  `yaml:"grade"`
	MinPercent float64 `yaml:"min_percent"`
}

type GradedActivity struct {
	Name   string  `yaml:"name"`
	Points float64 `yaml:"points"`
}

type Policy struct {
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

func (f CourseFacts) Empty() bool {
	return len(f.GradingScale) == 0 && len(f.GradedActivities) == 0 && len(f.Policies) == 0
}
