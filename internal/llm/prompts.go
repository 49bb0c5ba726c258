package llm

import (
	"fmt"
	"strings"

	"genstory-server/internal/models"
)

// Системный промт общий для всех задач генерации.
const storytellerSystemPrompt = "You are a creative storyteller, excellent in storytelling and character creation for children's stories."

func traitsAsText(traits []models.Trait) string {
	if len(traits) == 0 {
		return "(none provided)"
	}
	var b strings.Builder
	for i, t := range traits {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", t.Name, t.Value)
	}
	return b.String()
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// characterEnhancementPrompt собирает промт задачи "enhance character".
func characterEnhancementPrompt(c *models.Character) string {
	return fmt.Sprintf(`Refine and enhance the provided elements to develop a character that is engaging, educational, and suitable for young readers:
- Name: generate a fun and memorable name that resonates with young audiences.
- Description: enhance the description with lively, colorful details that paint a vivid picture for children.
- Traits: rewrite each provided trait so it is easy for children to understand and see reflected in the character's actions.
- Story context: provide a simple, engaging context that sets the stage for the character's adventures.

Given data:
- Name: %q
- Description: %q
- Traits: %q
- Story context: %q

Important guidelines:
1. Enhancements must be suitable for children, focusing on clarity, fun, and educational value.
2. All responses must be in English, regardless of the original input language.
3. Respond with a JSON object of exactly this structure:
{
  "optimized_name": "Suggested new name",
  "optimized_description": "Colorful and engaging description for children",
  "optimized_traits": [{"name": "trait name", "value": "child-friendly description of the trait"}],
  "optimized_story_context": "Engaging and simple setting that sparks children's imaginations"
}`,
		strOrEmpty(c.Name), c.Description, traitsAsText(c.Traits), strOrEmpty(c.StoryContext))
}

// characterSummary описывает персонажа для промтов истории.
// Используем optimized-поля: в историю попадают только обогащенные персонажи.
func characterSummary(c *models.Character) string {
	return fmt.Sprintf("- Name: %q, Description: %q, Traits: %q, Story context: %q",
		strOrEmpty(c.OptimizedName),
		strOrEmpty(c.OptimizedDescription),
		traitsAsText(c.OptimizedTraits),
		strOrEmpty(c.OptimizedStoryContext))
}

// storyEnhancementPrompt собирает промт задачи "enhance story".
func storyEnhancementPrompt(story *models.Story, characters []*models.Character) string {
	var roster strings.Builder
	for _, c := range characters {
		roster.WriteString(characterSummary(c))
		roster.WriteString("\n")
	}
	return fmt.Sprintf(`Refine the premise of a children's story and assign a narrative role to every listed character.

Story premise:
- Title: %q
- Description: %q

Characters (use every one of them, in this order):
%s
Important guidelines:
1. The refined title and description must be engaging and suitable for children.
2. Assign exactly one role entry per listed character, preserving the listed order.
3. All responses must be in English.
4. Respond with a JSON object of exactly this structure:
{
  "optimized_title": "Refined story title",
  "optimized_description": "Refined story description",
  "character_roles": [
    {
      "name": "character name",
      "role": "narrative role (hero, helper, trickster...)",
      "description": "what the character does in this story",
      "skills": ["..."],
      "motivations": ["..."],
      "flaws": ["..."],
      "interactions": ["how the character interacts with the others"]
    }
  ]
}`, story.Title, story.Description, roster.String())
}

// storyContentPrompt собирает промт задачи "author story content".
// Вызывается только после refine, поэтому optimized-поля и роли уже есть.
func storyContentPrompt(story *models.Story) string {
	var roles strings.Builder
	for _, r := range story.CharacterRoles {
		fmt.Fprintf(&roles, "- %s (%s): %s\n", r.Name, r.Role, r.Description)
	}
	title := story.Title
	if story.OptimizedTitle != nil {
		title = *story.OptimizedTitle
	}
	description := story.Description
	if story.OptimizedDescription != nil {
		description = *story.OptimizedDescription
	}
	return fmt.Sprintf(`Write a complete children's story based on the premise and cast below.

Premise:
- Title: %q
- Description: %q

Cast:
%s
Important guidelines:
1. The story must be suitable for children: clear language, warm tone, a gentle lesson.
2. All responses must be in English.
3. Respond with a JSON object of exactly this structure:
{
  "introduction": "how the story begins",
  "middle": "the adventure unfolds",
  "climax": "the turning point",
  "conclusion": "how the story ends",
  "lessons": ["what children learn from the story"],
  "full_story": "the full story text, assembled from the parts above"
}`, title, description, roles.String())
}

// coverImagePrompt собирает промт для генерации обложки.
func coverImagePrompt(story *models.Story) string {
	title := story.Title
	if story.OptimizedTitle != nil {
		title = *story.OptimizedTitle
	}
	description := story.Description
	if story.OptimizedDescription != nil {
		description = *story.OptimizedDescription
	}
	return fmt.Sprintf("A colorful, friendly children's book cover illustration for the story %q: %s. Soft shapes, warm colors, no text on the image.", title, description)
}
