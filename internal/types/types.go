package types

// YearMonth is the injected clock: the "current" calendar month used to
// resolve present tokens and recency. Month is 1-based.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// Index returns the total-month index (year*12 + month-1), a total order
// over calendar months.
func (ym YearMonth) Index() int {
	return ym.Year*12 + ym.Month - 1
}

// MonthInterval is a right-open interval of total-month indices.
type MonthInterval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Months returns the interval width in months.
func (iv MonthInterval) Months() int {
	return iv.End - iv.Start
}

// RoleSkill is a required or preferred skill with its relative weight.
// Weights are normalized by the scorer, so only ratios matter.
type RoleSkill struct {
	Skill  string  `json:"skill" yaml:"skill" validate:"required"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// SeniorityIndicators overrides the default seniority token lists per role.
type SeniorityIndicators struct {
	Senior []string `json:"senior" yaml:"senior"`
	Mid    []string `json:"mid" yaml:"mid"`
	Junior []string `json:"junior" yaml:"junior"`
}

// ScoringWeights holds the configurable component weights. Budget and
// Contract are accepted for schema compatibility but not consumed by the
// scorer.
type ScoringWeights struct {
	MustHave     float64 `json:"mustHave" yaml:"mustHave" validate:"gte=0"`
	NiceToHave   float64 `json:"niceToHave" yaml:"niceToHave" validate:"gte=0"`
	Experience   float64 `json:"experience" yaml:"experience" validate:"gte=0"`
	SkillDepth   float64 `json:"skillDepth" yaml:"skillDepth" validate:"gte=0"`
	Seniority    float64 `json:"seniority" yaml:"seniority" validate:"gte=0"`
	Recency      float64 `json:"recency" yaml:"recency" validate:"gte=0"`
	ProjectScale float64 `json:"projectScale" yaml:"projectScale" validate:"gte=0"`
	Education    float64 `json:"education" yaml:"education" validate:"gte=0"`
	Budget       float64 `json:"budget,omitempty" yaml:"budget"`
	Contract     float64 `json:"contract,omitempty" yaml:"contract"`
}

// HardFilters are the optional hard-filter thresholds. A nil pointer means
// the filter is not configured. Hard filters never zero a score; they flip
// BelowThreshold and append a reason.
type HardFilters struct {
	MinMustHaveMatchRatio      *float64 `json:"minMustHaveMatchRatio,omitempty" yaml:"minMustHaveMatchRatio" validate:"omitempty,gte=0,lte=1"`
	RequireAllMustHaveSkills   bool     `json:"requireAllMustHaveSkills,omitempty" yaml:"requireAllMustHaveSkills"`
	MinRelevantExperienceYears *float64 `json:"minRelevantExperienceYears,omitempty" yaml:"minRelevantExperienceYears" validate:"omitempty,gte=0"`
	MaxRedFlagPenalty          *int     `json:"maxRedFlagPenalty,omitempty" yaml:"maxRedFlagPenalty"`
}

// ScoringSpec groups the scoring configuration of a role.
type ScoringSpec struct {
	Weights     ScoringWeights `json:"weights" yaml:"weights"`
	HardFilters *HardFilters   `json:"hardFilters,omitempty" yaml:"hardFilters"`
}

// RoleSpec describes the role candidates are ranked against.
type RoleSpec struct {
	RoleID                      string               `json:"roleId" yaml:"roleId" validate:"required"`
	Title                       string               `json:"title" yaml:"title" validate:"required"`
	MinYearsExperience          float64              `json:"minYearsExperience" yaml:"minYearsExperience"`
	MustHaveSkills              []RoleSkill          `json:"mustHaveSkills" yaml:"mustHaveSkills" validate:"dive"`
	NiceToHaveSkills            []RoleSkill          `json:"niceToHaveSkills" yaml:"niceToHaveSkills" validate:"dive"`
	Keywords                    []string             `json:"keywords" yaml:"keywords"`
	ExperienceRelevanceKeywords []string             `json:"experienceRelevanceKeywords,omitempty" yaml:"experienceRelevanceKeywords"`
	SeniorityIndicators         *SeniorityIndicators `json:"seniorityIndicators,omitempty" yaml:"seniorityIndicators"`
	Scoring                     ScoringSpec          `json:"scoring" yaml:"scoring"`
}

// ProjectSpec owns cross-role configuration, most importantly the skill
// alias table shared by every role of the project.
type ProjectSpec struct {
	ProjectID    string              `json:"projectId" yaml:"projectId" validate:"required"`
	Name         string              `json:"name" yaml:"name"`
	SkillAliases map[string][]string `json:"skillAliases" yaml:"skillAliases"`
	Roles        []RoleSpec          `json:"roles,omitempty" yaml:"roles" validate:"dive"`
}

// AliasesFor returns the skill term plus its project aliases.
func (p *ProjectSpec) AliasesFor(skill string) []string {
	terms := []string{skill}
	if p != nil {
		terms = append(terms, p.SkillAliases[skill]...)
	}
	return terms
}

// SkillMatch is the evidence-bearing result of matching one skill.
// Invariant: Matched implies len(Evidence) > 0 with a non-empty snippet.
type SkillMatch struct {
	Term     string   `json:"term"`
	Weight   float64  `json:"weight"`
	Matched  bool     `json:"matched"`
	Evidence []string `json:"evidence"`
}

// KeywordHit mirrors SkillMatch for unweighted keywords.
type KeywordHit struct {
	Term     string   `json:"term"`
	Matched  bool     `json:"matched"`
	Evidence []string `json:"evidence"`
}

// ParsedRole is one segmented role from the experience section.
// DurationMonths is the sum of its merged interval widths (>= 1).
type ParsedRole struct {
	Title           string          `json:"title"`
	StartMonthIndex int             `json:"startMonthIndex"`
	EndMonthIndex   int             `json:"endMonthIndex"`
	DurationMonths  int             `json:"durationMonths"`
	TextBlock       string          `json:"-"`
	Intervals       []MonthInterval `json:"-"`
	Professional    bool            `json:"professional"`
}

// RecencyTag classifies how recently a role ended.
type RecencyTag string

const (
	RecencyCurrent RecencyTag = "current"
	RecencyRecent  RecencyTag = "recent"
	RecencyOld     RecencyTag = "old"
)

// RoleExperience is the per-role breakdown inside RelevantExperience.
type RoleExperience struct {
	Title           string     `json:"title"`
	Years           float64    `json:"years"`
	Relevant        bool       `json:"relevant"`
	Professional    bool       `json:"professional"`
	Recency         RecencyTag `json:"recency"`
	StartMonthIndex int        `json:"startMonthIndex"`
	EndMonthIndex   int        `json:"endMonthIndex"`
}

// RelevantExperience summarizes total vs role-relevant professional years.
type RelevantExperience struct {
	TotalYears    float64          `json:"totalYears"`
	RelevantYears float64          `json:"relevantYears"`
	Roles         []RoleExperience `json:"roles"`
}

// ContextQuality grades the prose surrounding a skill mention.
type ContextQuality string

const (
	ContextHigh   ContextQuality = "high"
	ContextMedium ContextQuality = "medium"
	ContextLow    ContextQuality = "low"
)

// SkillDepth describes how substantially one skill is used in the resume.
type SkillDepth struct {
	Skill               string         `json:"skill"`
	MentionCount        int            `json:"mentionCount"`
	InExperienceSection bool           `json:"inExperienceSection"`
	InRecentRole        bool           `json:"inRecentRole"`
	ContextQuality      ContextQuality `json:"contextQuality"`
	DepthScore          float64        `json:"depthScore"`
}

// SeniorityLevel is the detected candidate level.
type SeniorityLevel string

const (
	SenioritySenior  SeniorityLevel = "senior"
	SeniorityMid     SeniorityLevel = "mid"
	SeniorityJunior  SeniorityLevel = "junior"
	SeniorityUnknown SeniorityLevel = "unknown"
)

// Seniority is the detected level with its confidence and evidence lines.
type Seniority struct {
	Level      SeniorityLevel `json:"level"`
	Confidence float64        `json:"confidence"`
	Evidence   []string       `json:"evidence"`
}

// RecencyCategory classifies how recently a skill was exercised.
type RecencyCategory string

const (
	SkillRecencyCurrent RecencyCategory = "current"
	SkillRecencyRecent  RecencyCategory = "recent"
	SkillRecencyStale   RecencyCategory = "stale"
	SkillRecencyOld     RecencyCategory = "old"
	SkillRecencyUnknown RecencyCategory = "unknown"
)

// Trajectory is the direction of the candidate's career across roles.
type Trajectory string

const (
	TrajectoryAscending  Trajectory = "ascending"
	TrajectoryDescending Trajectory = "descending"
	TrajectoryStable     Trajectory = "stable"
	TrajectoryUnclear    Trajectory = "unclear"
)

// SkillRecency is the per-skill recency classification.
type SkillRecency struct {
	Skill      string          `json:"skill"`
	Category   RecencyCategory `json:"category"`
	Multiplier float64         `json:"multiplier"`
}

// RecencyAnalysis bundles skill recency with career trajectory.
type RecencyAnalysis struct {
	Skills       []SkillRecency `json:"skills"`
	Trajectory   Trajectory     `json:"trajectory"`
	RecencyScore float64        `json:"recencyScore"`
}

// RedFlagType enumerates detected red-flag families.
type RedFlagType string

const (
	FlagJobHopping       RedFlagType = "job_hopping"
	FlagEmploymentGap    RedFlagType = "employment_gap"
	FlagTitleInflation   RedFlagType = "title_inflation"
	FlagCareerRegression RedFlagType = "career_regression"
)

// Severity grades a red flag.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// RedFlag is one detected warning sign with its score penalty.
type RedFlag struct {
	Type     RedFlagType `json:"type"`
	Severity Severity    `json:"severity"`
	Evidence string      `json:"evidence"`
	Penalty  int         `json:"penalty"`
}

// ProjectScale captures signals about the scale the candidate worked at.
type ProjectScale struct {
	MaxUserScale     int64    `json:"maxUserScale"`
	MaxTeamSize      int      `json:"maxTeamSize"`
	CompanyTypes     []string `json:"companyTypes"`
	ImpactIndicators []string `json:"impactIndicators"`
	ScaleScore       float64  `json:"scaleScore"`
}

// DegreeLevel ranks detected degrees.
type DegreeLevel string

const (
	DegreePhD       DegreeLevel = "phd"
	DegreeMasters   DegreeLevel = "masters"
	DegreeBachelors DegreeLevel = "bachelors"
	DegreeAssociate DegreeLevel = "associate"
	DegreeBootcamp  DegreeLevel = "bootcamp"
)

// DegreeField classifies the study field of a degree by its context.
type DegreeField string

const (
	FieldCS          DegreeField = "cs"
	FieldEngineering DegreeField = "engineering"
	FieldRelated     DegreeField = "related"
	FieldUnrelated   DegreeField = "unrelated"
	FieldUnknown     DegreeField = "unknown"
)

// Degree is one detected degree with its field and evidence snippet.
type Degree struct {
	Level    DegreeLevel `json:"level"`
	Field    DegreeField `json:"field"`
	Evidence string      `json:"evidence"`
}

// Education summarizes detected degrees and certifications.
type Education struct {
	Degrees        []Degree `json:"degrees"`
	BestDegree     *Degree  `json:"bestDegree,omitempty"`
	Certifications []string `json:"certifications"`
	EducationScore float64  `json:"educationScore"`
}

// ParseQualityLevel grades overall parse confidence.
type ParseQualityLevel string

const (
	ParseHigh   ParseQualityLevel = "high"
	ParseMedium ParseQualityLevel = "medium"
	ParseLow    ParseQualityLevel = "low"
)

// TextExtractionQuality grades the extracted text itself.
type TextExtractionQuality string

const (
	ExtractionGood    TextExtractionQuality = "good"
	ExtractionPartial TextExtractionQuality = "partial"
	ExtractionPoor    TextExtractionQuality = "poor"
)

// ParseQuality reports how trustworthy the structured extraction is.
type ParseQuality struct {
	Overall                ParseQualityLevel     `json:"overall"`
	Confidence             float64               `json:"confidence"`
	TextExtraction         TextExtractionQuality `json:"textExtraction"`
	DatesParsed            int                   `json:"datesParsed"`
	ExperienceSectionFound bool                  `json:"experienceSectionFound"`
	SkillsMatched          int                   `json:"skillsMatched"`
	Issues                 []string              `json:"issues"`
}

// Features is the full per-candidate feature bundle.
type Features struct {
	MustHave           []SkillMatch       `json:"mustHave"`
	NiceToHave         []SkillMatch       `json:"niceToHave"`
	KeywordHits        []KeywordHit       `json:"keywordHits"`
	YearsExperience    *float64           `json:"yearsExperience"`
	RelevantExperience RelevantExperience `json:"relevantExperience"`
	SkillDepth         []SkillDepth       `json:"skillDepth"`
	Seniority          Seniority          `json:"seniority"`
	Recency            RecencyAnalysis    `json:"recencyAnalysis"`
	RedFlags           []RedFlag          `json:"redFlags"`
	ProjectScale       ProjectScale       `json:"projectScale"`
	Education          Education          `json:"education"`
	ParseQuality       ParseQuality       `json:"parseQuality"`
	Warnings           []string           `json:"warnings"`
}

// TotalPenalty sums red-flag penalties, capped at 25.
func (f *Features) TotalPenalty() int {
	total := 0
	for _, flag := range f.RedFlags {
		total += flag.Penalty
	}
	if total > 25 {
		total = 25
	}
	return total
}

// ComponentScores are the eight weighted component scores, each in [0,1].
type ComponentScores struct {
	MustHave     float64 `json:"mustHave"`
	NiceToHave   float64 `json:"niceToHave"`
	Experience   float64 `json:"experience"`
	SkillDepth   float64 `json:"skillDepth"`
	Seniority    float64 `json:"seniority"`
	Recency      float64 `json:"recency"`
	ProjectScale float64 `json:"projectScale"`
	Education    float64 `json:"education"`
}

// ScoreResult is the scorer output. OverallScore = max(0, RawScore-Penalty).
type ScoreResult struct {
	OverallScore     int             `json:"overallScore"`
	RawScore         int             `json:"rawScore"`
	Penalty          int             `json:"penalty"`
	Components       ComponentScores `json:"components"`
	WeightsUsed      ComponentScores `json:"weightsUsed"`
	BelowThreshold   bool            `json:"belowThreshold"`
	ThresholdReasons []string        `json:"thresholdReasons"`
}

// CandidateAnalysis is the immutable per-candidate output of the pipeline.
type CandidateAnalysis struct {
	CandidateID string      `json:"candidateId"`
	RoleID      string      `json:"roleId"`
	Features    Features    `json:"features"`
	Score       ScoreResult `json:"score"`
}

// AnalyzeInput is the core entry-point input. Now is the injected clock;
// the pipeline never reads system time.
type AnalyzeInput struct {
	CandidateID string
	RawText     string
	Project     *ProjectSpec
	Role        *RoleSpec
	Now         YearMonth
}

// RankedCandidate pairs an analysis with its position in a ranking.
type RankedCandidate struct {
	Rank     int               `json:"rank"`
	Analysis CandidateAnalysis `json:"analysis"`
}

// RankingReport is the batch-ranking output for one role.
type RankingReport struct {
	RoleID     string            `json:"roleId"`
	RoleTitle  string            `json:"roleTitle"`
	Candidates []RankedCandidate `json:"candidates"`
	Errors     []string          `json:"errors,omitempty"`
}
