package prompts

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// TemplateEngine manages prompt templates
type TemplateEngine struct {
	templates map[string]*Template
	mu        sync.RWMutex
}

// Template represents a prompt template with variables
type Template struct {
	Name        string   `json:"name"`
	Content     string   `json:"content"`
	Variables   []string `json:"variables"`
	Description string   `json:"description"`
}

// TemplateContext holds variables for template rendering
type TemplateContext struct {
	// Dial configuration
	PartySize     string `json:"party_size"`
	PartyTier     string `json:"party_tier"`
	SceneCount    string `json:"scene_count"`
	SessionLength string `json:"session_length"`
	Tone          string `json:"tone"`
	Themes        string `json:"themes"`

	// Generation context
	Outline      string `json:"outline"`
	PreviousText string `json:"previous_text"`
	Feedback     string `json:"feedback"`
	SceneNumber  string `json:"scene_number"`
	Instruction  string `json:"instruction"`

	// Additional context
	Custom map[string]string `json:"custom"`
}

// Template names registered by InitializeDefaultTemplates.
const (
	TemplateOutline       = "outline_draft"
	TemplateOutlineRevise = "outline_revise"
	TemplateScene         = "scene_draft"
	TemplateSceneRevise   = "scene_revise"
	TemplateNPCCompile    = "npc_compile"
	TemplateNPCRefine     = "npc_refine"
	TemplateChatReply     = "chat_reply"
)

// NewTemplateEngine creates a new template engine
func NewTemplateEngine() *TemplateEngine {
	return &TemplateEngine{
		templates: make(map[string]*Template),
	}
}

// RegisterTemplate registers a new template
func (e *TemplateEngine) RegisterTemplate(tmpl *Template) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.templates[tmpl.Name] = tmpl
	return nil
}

// GetTemplate retrieves a template by name
func (e *TemplateEngine) GetTemplate(name string) (*Template, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	tmpl, ok := e.templates[name]
	if !ok {
		return nil, fmt.Errorf("template not found: %s", name)
	}
	return tmpl, nil
}

var varRegex = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Render renders a template with the given context
func (e *TemplateEngine) Render(templateName string, ctx *TemplateContext) (string, error) {
	tmpl, err := e.GetTemplate(templateName)
	if err != nil {
		return "", err
	}

	result := varRegex.ReplaceAllStringFunc(tmpl.Content, func(match string) string {
		varName := varRegex.FindStringSubmatch(match)[1]
		if value, ok := e.getVariableValue(ctx, varName); ok {
			return value
		}
		return match // Keep placeholder if not found
	})

	// Handle custom variables
	if ctx.Custom != nil {
		for key, value := range ctx.Custom {
			placeholder := fmt.Sprintf("{{%s}}", key)
			result = strings.ReplaceAll(result, placeholder, value)
		}
	}

	return result, nil
}

// getVariableValue retrieves a variable value from context
func (e *TemplateEngine) getVariableValue(ctx *TemplateContext, varName string) (string, bool) {
	switch varName {
	case "party_size":
		return ctx.PartySize, ctx.PartySize != ""
	case "party_tier":
		return ctx.PartyTier, ctx.PartyTier != ""
	case "scene_count":
		return ctx.SceneCount, ctx.SceneCount != ""
	case "session_length":
		return ctx.SessionLength, ctx.SessionLength != ""
	case "tone":
		return ctx.Tone, ctx.Tone != ""
	case "themes":
		return ctx.Themes, ctx.Themes != ""
	case "outline":
		return ctx.Outline, ctx.Outline != ""
	case "previous_text":
		return ctx.PreviousText, ctx.PreviousText != ""
	case "feedback":
		return ctx.Feedback, ctx.Feedback != ""
	case "scene_number":
		return ctx.SceneNumber, ctx.SceneNumber != ""
	case "instruction":
		return ctx.Instruction, ctx.Instruction != ""
	default:
		if ctx.Custom != nil {
			if val, ok := ctx.Custom[varName]; ok {
				return val, true
			}
		}
		return "", false
	}
}

// InitializeDefaultTemplates initializes the default adventure templates
func (e *TemplateEngine) InitializeDefaultTemplates() error {
	templates := []*Template{
		{
			Name:        TemplateOutline,
			Description: "Drafts the adventure outline from confirmed dials",
			Content: `You are an experienced tabletop adventure designer.

Draft an adventure outline with the following configuration:
- Party size: {{party_size}} players
- Party tier: {{party_tier}}
- Number of scenes: {{scene_count}}
- Session length: {{session_length}}
- Tone: {{tone}}
- Themes: {{themes}}

Write a titled outline with one short paragraph per scene, numbered 1 through {{scene_count}}. Each scene needs a clear goal, an obstacle, and a hook into the next scene. Keep the whole outline under 400 words.`,
			Variables: []string{"party_size", "party_tier", "scene_count", "session_length", "tone", "themes"},
		},
		{
			Name:        TemplateOutlineRevise,
			Description: "Redrafts the outline incorporating user feedback",
			Content: `You are an experienced tabletop adventure designer revising an outline.

Current outline:
{{previous_text}}

The user asked for these changes:
{{feedback}}

Rewrite the full outline applying the feedback. Keep the scene count and overall structure unless the feedback says otherwise. Keep the tone: {{tone}}.`,
			Variables: []string{"previous_text", "feedback", "tone"},
		},
		{
			Name:        TemplateScene,
			Description: "Drafts one numbered scene from the outline",
			Content: `You are writing scene {{scene_number}} of a tabletop adventure.

Outline:
{{outline}}

Expand scene {{scene_number}} into a playable scene: setting description, what the characters can discover, the central obstacle with stakes, and how it connects forward. Tone: {{tone}}. Keep it under 300 words.`,
			Variables: []string{"scene_number", "outline", "tone"},
		},
		{
			Name:        TemplateSceneRevise,
			Description: "Redrafts a scene incorporating user feedback",
			Content: `You are revising scene {{scene_number}} of a tabletop adventure.

Current draft:
{{previous_text}}

The user asked for these changes:
{{feedback}}

Rewrite the scene applying the feedback. Tone: {{tone}}.`,
			Variables: []string{"scene_number", "previous_text", "feedback", "tone"},
		},
		{
			Name:        TemplateNPCCompile,
			Description: "Drafts the NPC cast for a confirmed outline",
			Content: `You are casting the non-player characters for a tabletop adventure.

Outline:
{{outline}}

Write 3 to 5 NPCs the outline needs. For each: a name, one line of appearance, one line of motivation, and one secret. Tone: {{tone}}. Themes to echo: {{themes}}.`,
			Variables: []string{"outline", "tone", "themes"},
		},
		{
			Name:        TemplateNPCRefine,
			Description: "Reworks one NPC per the user's instruction",
			Content: `Rework this non-player character:

{{previous_text}}

Instruction: {{instruction}}

Return the full revised character in the same format.`,
			Variables: []string{"previous_text", "instruction"},
		},
		{
			Name:        TemplateChatReply,
			Description: "Conversational wrapper around a dial prompt",
			Content: `You are a friendly adventure-setup assistant. The user just said:
{{previous_text}}

Reply in one or two sentences, then ask: {{instruction}}`,
			Variables: []string{"previous_text", "instruction"},
		},
	}

	for _, tmpl := range templates {
		if err := e.RegisterTemplate(tmpl); err != nil {
			return err
		}
	}
	return nil
}
