package ai

import (
	"fmt"
	"strings"

	"github.com/voo-ward/voo-citizen-backend/pkg/enums"
)

const (
	analyzeMaxTokens  = 500
	enhanceMaxTokens  = 300
	solutionMaxTokens = 400
	chatMaxTokens     = 300
	categoryMaxTokens = 20
)

const analyzeUserPrompt = "Analyze this civic issue image and categorize it."

func categoryList() string {
	categories := enums.IssueCategories()
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.String())
	}
	return strings.Join(names, ", ")
}

func analyzeSystemPrompt() string {
	return fmt.Sprintf(`You are an expert at analyzing civic infrastructure issues in Kenya.
Analyze the image and return JSON with:
- category: one of [%s]
- title: short descriptive title (max 60 chars)
- description: detailed description of the issue (100-150 words)
- urgency: one of [low, medium, high, critical]
- confidence: 0-100 percentage of how confident you are
- estimatedResolutionTime: estimated time to fix (e.g. "2-3 days")`, categoryList())
}

func enhanceSystemPrompt(category enums.IssueCategory) string {
	return fmt.Sprintf(`You are a helpful assistant that improves civic issue reports for %s.
Enhance the description to be:
- Clear and professional
- Include technical details if visible
- Maintain original meaning
- Add safety concerns if relevant
- Keep under 150 words
Return only the enhanced text, no quotes or labels.`, category)
}

const solutionSystemPrompt = `You are a civic infrastructure expert in Kenya. Suggest solutions for issues.
Return JSON with:
- estimatedTime: time to resolve (e.g. "3-5 days")
- requiredResources: array of resources needed
- suggestedActions: array of step-by-step actions
- priority: low/medium/high/critical
- responsibleDepartment: which govt department handles this`

func solutionUserPrompt(category enums.IssueCategory, description string) string {
	return fmt.Sprintf("Issue Type: %s\nDescription: %s", category, description)
}

func categorySystemPrompt() string {
	return "Categorize this civic issue. Reply with ONLY one: " + categoryList()
}

const chatSystemPrompt = `You are VOO Assistant, a helpful civic engagement chatbot for VOO Ward platform in Kenya.
Help citizens:
- Report community issues
- Track their reported issues
- Understand local government processes
- Get information about services
Be friendly, concise, and helpful. Speak in simple English.`
