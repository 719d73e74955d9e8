package entities

// AnalysisResult represents the structured output from the LLM summary call
type AnalysisResult struct {
	ExecutiveSummary string          `json:"executive_summary"`
	KeyPoints        []KeyPoint      `json:"key_points"`
	Decisions        []Decision      `json:"decisions"`
	RiskSignals      []RiskSignal    `json:"risk_signals"`
	NextSteps        []NextStep      `json:"next_steps"`
	ExtractedTasks   []ExtractedTask `json:"extracted_tasks"`
	Topics           []string        `json:"topics"`
	OpenQuestions    []string        `json:"open_questions"`
	ClientSentiment  float64         `json:"client_sentiment"`
}

// KeyPoint represents a key point discussed in the meeting
type KeyPoint struct {
	Text       string `json:"text"`
	Importance string `json:"importance"` // low, medium, high
}

// Decision represents a decision made during the meeting
type Decision struct {
	DecisionText string `json:"decision_text"`
	Owner        string `json:"owner"`
	Impact       string `json:"impact"` // low, medium, high
}

// RiskSignal represents a risk indicator surfaced by the analysis
type RiskSignal struct {
	Description string `json:"description"`
	Severity    string `json:"severity"` // low, medium, high
	Category    string `json:"category"` // e.g. concentracao, liquidez, perfil
}

// NextStep represents a follow-up action agreed in the meeting
type NextStep struct {
	Description      string `json:"description"`
	Owner            string `json:"owner"`
	DueDateMentioned string `json:"due_date_mentioned"` // e.g. "semana que vem"
	Priority         string `json:"priority"`           // baixa, media, alta, urgente
}

// ExtractedTask represents a task candidate extracted from the transcript
type ExtractedTask struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"` // baixa, media, alta, urgente
}
