package interfaces

import (
	"context"

	"questforge/server/internal/dials"
)

// ChunkFunc receives incremental text deltas during streamed generation.
type ChunkFunc func(delta string)

// Generator produces long-form adventure content from confirmed dials.
// Implementations stream partial text through the chunk callback and
// return the complete text when the stream ends.
type Generator interface {
	// GenerateOutline drafts the adventure outline.
	GenerateOutline(ctx context.Context, state *dials.State, onChunk ChunkFunc) (string, error)

	// ReviseOutline redrafts the outline incorporating user feedback.
	ReviseOutline(ctx context.Context, state *dials.State, previous, feedback string, onChunk ChunkFunc) (string, error)

	// GenerateScene drafts one numbered scene from the outline.
	GenerateScene(ctx context.Context, state *dials.State, outline string, sceneNumber int, onChunk ChunkFunc) (string, error)

	// ReviseScene redrafts a scene incorporating user feedback.
	ReviseScene(ctx context.Context, state *dials.State, previous, feedback string, sceneNumber int, onChunk ChunkFunc) (string, error)

	// CompileNPCs drafts the cast of NPCs for the confirmed outline.
	CompileNPCs(ctx context.Context, state *dials.State, outline string, onChunk ChunkFunc) (string, error)

	// RefineNPC reworks a single NPC per the user's instruction.
	RefineNPC(ctx context.Context, previous, instruction string) (string, error)

	// ComposeReply wraps the wizard's next question in a short
	// conversational reply to the user's message.
	ComposeReply(ctx context.Context, userMessage, question string) (string, error)
}
