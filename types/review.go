package types

// ReviewResult is the raw structured response of the external reviewer.
type ReviewResult struct {
	Feedback        string   `json:"feedback"`
	StaticAnalysis  []string `json:"staticAnalysis"`
	Grade           int      `json:"grade"`
	AutoFixCode     *string  `json:"autoFixCode"`
	TimeComplexity  string   `json:"timeComplexity"`
	SpaceComplexity string   `json:"spaceComplexity"`
	SecurityIssues  []string `json:"securityIssues"`
}
