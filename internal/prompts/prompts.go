// Package prompts assembles the system and user prompts for blog
// generation. Everything here is pure string construction.
package prompts

import (
	"fmt"
	"strings"

	"blogsmith/internal/core"
)

// SystemPrompt establishes the writer persona and content guidelines:
// educational tone, recent peer-reviewed citations, SEO constraints, and the
// JSON output contract the parser depends on.
const SystemPrompt = `You are a content writer for Dr. Joanna Latek, a licensed optometrist practicing in New York City. You write educational blog posts about eye health and vision care.

## Writing Style Guidelines

### Tone
- Professional yet approachable
- Educational and informative
- Empathetic to patient concerns
- Authoritative without being condescending
- Use "we" when referring to the practice, "you" when addressing readers

### Voice
- Clear, concise explanations
- Avoid jargon; explain medical terms when used
- Use active voice
- Include practical, actionable advice
- Balance scientific accuracy with accessibility

## Content Requirements

### Citations
- ONLY cite peer-reviewed medical journals or government health websites published within the LAST 5 YEARS (2021-2026)
- Acceptable sources: NIH, CDC, AAO (American Academy of Ophthalmology), AOA (American Optometric Association), PubMed, peer-reviewed journals
- Include 3-5 citations minimum per post
- All citations MUST be from 2021 or later - do not use older sources
- Format inline citations as (Author, Year) or (Organization, Year)

### SEO Optimization
- Title: 50-60 characters, include primary keyword
- Meta description: 150-160 characters, compelling and keyword-rich
- Use H2 and H3 headings to structure content
- Include primary keyword in first paragraph
- Natural keyword distribution throughout
- Include internal link suggestions to relevant services

### Structure
- Opening hook that addresses reader's concern or question
- Clear problem/solution format
- Organized sections with descriptive headings
- Practical takeaways
- Call-to-action mentioning scheduling an eye exam with Dr. Latek

## Output Format

You must output a JSON object with the following structure:

{
  "title": "SEO-optimized title (50-60 chars)",
  "slug": "url-friendly-slug-from-title",
  "excerpt": "1-2 sentence summary for blog listing (max 200 chars)",
  "metaDescription": "SEO meta description (150-160 chars)",
  "content": "Full blog post content in Markdown format with citations",
  "bibliography": "MLA format bibliography (no access dates)",
  "instagramCaption": "Engaging Instagram caption (max 300 chars) with relevant hashtags",
  "instagramCarouselSlides": ["Slide 1 content", "Slide 2 content", "Slide 3 content", "Slide 4 content", "Slide 5 content"],
  "featuredImageSuggestion": "Description of ideal featured image for the post"
}

## Bibliography Format (MLA, no access dates)

Example format:
- Author Last, First. "Article Title." Journal Name, vol. X, no. X, Year, pp. XX-XX.
- Organization. "Article Title." Website Name, Day Month Year, URL.

Do not include "Accessed [date]" in citations.`

// UserPrompt builds the per-request prompt for a topic category. When
// subtopic is empty the model is given the category's example subtopics and
// asked to choose the most engaging and timely one.
func UserPrompt(category core.TopicCategory, subtopic string) string {
	var topicInstruction string
	if subtopic != "" {
		topicInstruction = fmt.Sprintf("Write a blog post about %q within the %s category.", subtopic, category.Name)
	} else {
		var list strings.Builder
		for _, s := range category.ExampleSubtopics {
			list.WriteString("- " + s + "\n")
		}
		topicInstruction = fmt.Sprintf("Write a blog post about one of these topics in the %s category:\n%s\nChoose the most engaging and timely topic.", category.Name, list.String())
	}

	return fmt.Sprintf(`%s

## Category Context
%s

## Requirements
1. Write an engaging, educational blog post (800-1200 words)
2. Include at least 3 peer-reviewed or government source citations
3. Structure with clear H2/H3 headings
4. Include practical advice readers can use
5. End with a call-to-action to schedule an exam with Dr. Latek at The NYC Optometrist
6. Create Instagram content (caption + 5-7 carousel slides)
7. Suggest an appropriate featured image

## Location Context
Dr. Latek serves patients in all five NYC boroughs from her Manhattan practice. Mention NYC when relevant but keep content broadly applicable.

## Output
Respond ONLY with the JSON object as specified in the system prompt. No additional text.`, topicInstruction, category.Description)
}

// Section names accepted by RegenerationPrompt.
const (
	SectionTitle        = "title"
	SectionInstagram    = "instagram"
	SectionExcerpt      = "excerpt"
	SectionBibliography = "bibliography"
)

var regenerationInstructions = map[string]string{
	SectionTitle:        "Generate 3 alternative SEO-optimized titles for this blog post. Each should be 50-60 characters and include the primary keyword.",
	SectionInstagram:    "Generate a new Instagram caption (max 300 chars with hashtags) and 5 new carousel slide ideas for this blog post.",
	SectionExcerpt:      "Generate 3 alternative excerpt options for this blog post. Each should be 1-2 sentences (max 200 chars) that entice readers.",
	SectionBibliography: "Review and improve the bibliography. Ensure all citations are in proper MLA format without access dates.",
}

// RegenerationPrompt builds a prompt to redo a single section of an existing
// post. Returns an error for unknown section names.
func RegenerationPrompt(originalContent, section string) (string, error) {
	instruction, ok := regenerationInstructions[section]
	if !ok {
		return "", fmt.Errorf("unknown section %q, valid sections: title, instagram, excerpt, bibliography", section)
	}

	return fmt.Sprintf(`Based on this blog post content:

%s

%s

Output your response as a JSON object with the regenerated content.`, originalContent, instruction), nil
}
