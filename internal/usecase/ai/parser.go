package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/domain/entities"
	usecaseErrors "github.com/leocwb13/w1-acompanhamento-reunioes-sub000/internal/usecase/errors"
)

// Parser validates LLM responses and turns them into domain objects
type Parser struct{}

// NewParser creates a new Parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseSummaryResponse parses the LLM JSON response into an AnalysisResult.
// The model sometimes wraps the JSON in markdown fences.
func (p *Parser) ParseSummaryResponse(content string) (*entities.AnalysisResult, error) {
	content = extractJSON(content)

	var result entities.AnalysisResult
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrSummaryParseFailed, err)
	}

	if result.ExecutiveSummary == "" {
		return nil, fmt.Errorf("%w: missing executive_summary", usecaseErrors.ErrSummaryParseFailed)
	}

	return &result, nil
}

// ExtractTasks converts the analysis output into backlog task candidates
func (p *Parser) ExtractTasks(ownerID uuid.UUID, meetingID uuid.UUID, clientID uuid.UUID, result *entities.AnalysisResult) []*entities.Task {
	if result == nil {
		return nil
	}

	tasks := make([]*entities.Task, 0, len(result.ExtractedTasks)+len(result.NextSteps))

	for _, item := range result.ExtractedTasks {
		if item.Title == "" {
			continue
		}
		task := entities.NewTask(ownerID, item.Title)
		task.MeetingID = &meetingID
		task.ClientID = &clientID
		task.Priority = parsePriority(item.Priority)
		if item.Description != "" {
			desc := item.Description
			task.Description = &desc
		}
		tasks = append(tasks, task)
	}

	for _, step := range result.NextSteps {
		if step.Description == "" {
			continue
		}
		task := entities.NewTask(ownerID, step.Description)
		task.MeetingID = &meetingID
		task.ClientID = &clientID
		task.Priority = parsePriority(step.Priority)
		if step.DueDateMentioned != "" || step.Owner != "" {
			desc := fmt.Sprintf("Prazo mencionado: %s\nResponsável: %s", step.DueDateMentioned, step.Owner)
			task.Description = &desc
		}
		tasks = append(tasks, task)
	}

	return tasks
}

// ValidateTranscript checks that a transcript is worth summarizing
func (p *Parser) ValidateTranscript(transcript string) error {
	const (
		minChars = 100
		minWords = 20
	)

	if len(transcript) < minChars {
		return fmt.Errorf("transcript too short: %d characters (minimum: %d)", len(transcript), minChars)
	}

	if words := strings.Fields(transcript); len(words) < minWords {
		return fmt.Errorf("transcript too short: %d words (minimum: %d)", len(words), minWords)
	}

	return nil
}

func parsePriority(s string) entities.TaskPriority {
	p := entities.TaskPriority(strings.ToLower(strings.TrimSpace(s)))
	if p.IsValid() {
		return p
	}
	return entities.TaskPriorityMedia
}

// extractJSON strips markdown code fences around a JSON body
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
