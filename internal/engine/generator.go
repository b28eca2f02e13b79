package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"questforge/server/internal/dials"
	"questforge/server/internal/interfaces"
	"questforge/server/internal/prompts"
)

const generatorSystemPrompt = "You are a tabletop adventure designer. Write clear, playable content. Never break format."

// AdventureGenerator produces outline/scene/NPC drafts by rendering
// prompt templates from the session's dial state and streaming the LLM
// completion through the caller's chunk callback.
type AdventureGenerator struct {
	llm       *LLMClient
	templates *prompts.TemplateEngine
}

var _ interfaces.Generator = (*AdventureGenerator)(nil)

// NewAdventureGenerator creates a generator backed by the given client.
func NewAdventureGenerator(llm *LLMClient) *AdventureGenerator {
	engine := prompts.NewTemplateEngine()
	_ = engine.InitializeDefaultTemplates()

	return &AdventureGenerator{
		llm:       llm,
		templates: engine,
	}
}

func (g *AdventureGenerator) GenerateOutline(ctx context.Context, state *dials.State, onChunk interfaces.ChunkFunc) (string, error) {
	prompt, err := g.templates.Render(prompts.TemplateOutline, templateContext(state))
	if err != nil {
		return "", err
	}
	return g.stream(ctx, prompt, onChunk)
}

func (g *AdventureGenerator) ReviseOutline(ctx context.Context, state *dials.State, previous, feedback string, onChunk interfaces.ChunkFunc) (string, error) {
	tctx := templateContext(state)
	tctx.PreviousText = previous
	tctx.Feedback = feedback

	prompt, err := g.templates.Render(prompts.TemplateOutlineRevise, tctx)
	if err != nil {
		return "", err
	}
	return g.stream(ctx, prompt, onChunk)
}

func (g *AdventureGenerator) GenerateScene(ctx context.Context, state *dials.State, outline string, sceneNumber int, onChunk interfaces.ChunkFunc) (string, error) {
	tctx := templateContext(state)
	tctx.Outline = outline
	tctx.SceneNumber = strconv.Itoa(sceneNumber)

	prompt, err := g.templates.Render(prompts.TemplateScene, tctx)
	if err != nil {
		return "", err
	}
	return g.stream(ctx, prompt, onChunk)
}

func (g *AdventureGenerator) ReviseScene(ctx context.Context, state *dials.State, previous, feedback string, sceneNumber int, onChunk interfaces.ChunkFunc) (string, error) {
	tctx := templateContext(state)
	tctx.PreviousText = previous
	tctx.Feedback = feedback
	tctx.SceneNumber = strconv.Itoa(sceneNumber)

	prompt, err := g.templates.Render(prompts.TemplateSceneRevise, tctx)
	if err != nil {
		return "", err
	}
	return g.stream(ctx, prompt, onChunk)
}

func (g *AdventureGenerator) CompileNPCs(ctx context.Context, state *dials.State, outline string, onChunk interfaces.ChunkFunc) (string, error) {
	tctx := templateContext(state)
	tctx.Outline = outline

	prompt, err := g.templates.Render(prompts.TemplateNPCCompile, tctx)
	if err != nil {
		return "", err
	}
	return g.stream(ctx, prompt, onChunk)
}

func (g *AdventureGenerator) RefineNPC(ctx context.Context, previous, instruction string) (string, error) {
	tctx := &prompts.TemplateContext{
		PreviousText: previous,
		Instruction:  instruction,
	}

	prompt, err := g.templates.Render(prompts.TemplateNPCRefine, tctx)
	if err != nil {
		return "", err
	}
	return g.llm.Chat(ctx, generatorSystemPrompt, prompt)
}

func (g *AdventureGenerator) ComposeReply(ctx context.Context, userMessage, question string) (string, error) {
	tctx := &prompts.TemplateContext{
		PreviousText: userMessage,
		Instruction:  question,
	}

	prompt, err := g.templates.Render(prompts.TemplateChatReply, tctx)
	if err != nil {
		return "", err
	}
	return g.llm.Chat(ctx, generatorSystemPrompt, prompt)
}

func (g *AdventureGenerator) stream(ctx context.Context, prompt string, onChunk interfaces.ChunkFunc) (string, error) {
	return g.llm.ChatStream(ctx, generatorSystemPrompt, prompt, func(delta string) {
		if onChunk != nil {
			onChunk(delta)
		}
	})
}

// templateContext flattens the dial state into template variables.
func templateContext(state *dials.State) *prompts.TemplateContext {
	return &prompts.TemplateContext{
		PartySize:     dialString(state, dials.DialPartySize),
		PartyTier:     dialString(state, dials.DialPartyTier),
		SceneCount:    dialString(state, dials.DialSceneCount),
		SessionLength: dialString(state, dials.DialSessionLength),
		Tone:          dialString(state, dials.DialTone),
		Themes:        dialString(state, dials.DialThemes),
	}
}

// dialString formats a dial value for prompt interpolation. Values
// arrive either Go-typed (fresh session) or JSON-decoded (restored from
// Redis), so numbers may be int or float64 and lists may be []string or
// []interface{}.
func dialString(state *dials.State, dialID string) string {
	v, ok := state.Get(dialID)
	if !ok {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.Itoa(int(val))
	case []string:
		return strings.Join(val, ", ")
	case []interface{}:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}
