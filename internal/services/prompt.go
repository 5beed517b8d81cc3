package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildAssessmentPrompt creates the candidate-fit prompt. The CV context is
// the deduplicated retrieved chunks, highest similarity first.
func (pb *PromptBuilder) BuildAssessmentPrompt(jobTitle, jdSummary, cvContext string) string {
	return fmt.Sprintf(`You are an expert recruiter evaluating a candidate's fit for a %s position.

JOB DESCRIPTION SUMMARY:
%s

CANDIDATE CV EXCERPTS (most relevant first):
%s

Analyze the candidate's CV excerpts against the job requirements. Consider:
- Technical skills alignment
- Experience level and relevance
- Education and certifications
- Project experience

Return ONLY a valid JSON object with this exact structure:
{
  "score": <number between 0 and 100>,
  "strengths": ["strength1", "strength2", "strength3"],
  "weaknesses": ["weakness1", "weakness2"],
  "recommendation": "strong_match|good_match|potential_match|poor_match"
}

Be objective. Justify scores only through the provided excerpts; if the
excerpts are empty or irrelevant, score accordingly.`,
		jobTitle, jdSummary, cvContext)
}

// BuildStrictAssessmentPrompt is the one deterministic retry used when the
// first response failed schema validation.
func (pb *PromptBuilder) BuildStrictAssessmentPrompt(jobTitle, jdSummary, cvContext string) string {
	return fmt.Sprintf(`Your previous response could not be parsed. Respond again, and this time output NOTHING except a single JSON object. No markdown fences, no commentary, no trailing text.

The JSON object must have exactly these keys:
- "score": a number between 0 and 100
- "strengths": an array of short strings
- "weaknesses": an array of short strings
- "recommendation": one of "strong_match", "good_match", "potential_match", "poor_match"

Task: evaluate the candidate below for a %s position.

JOB DESCRIPTION SUMMARY:
%s

CANDIDATE CV EXCERPTS:
%s`,
		jobTitle, jdSummary, cvContext)
}

// BuildJDSummaryPrompt condenses a job description before matching.
func (pb *PromptBuilder) BuildJDSummaryPrompt(jdText string) string {
	return fmt.Sprintf(`You are an expert recruiter. Analyze the job description and provide:
1. A concise summary (2-3 sentences)
2. Key required skills and qualifications
3. Nice-to-have skills
4. Role level (Entry/Mid/Senior)

Return plain text, no JSON.

Job Description:
%s`, jdText)
}

// FormatRetrievedContext renders retrieved chunks for the prompt.
func FormatRetrievedContext(snippets []ContextSnippet) string {
	if len(snippets) == 0 {
		return "No relevant CV content was retrieved for this candidate."
	}

	var parts []string
	for i, snippet := range snippets {
		parts = append(parts, fmt.Sprintf("--- Excerpt %d (Similarity: %.2f) ---\n%s",
			i+1, snippet.Similarity, strings.TrimSpace(snippet.Text)))
	}

	return strings.Join(parts, "\n\n")
}
