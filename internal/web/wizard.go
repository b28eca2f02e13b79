package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"questforge/server/internal/config"
	"questforge/server/internal/dials"
	"questforge/server/internal/interfaces"
	"questforge/server/internal/models"
	"questforge/server/internal/protocol"
	"questforge/server/internal/storage"
)

// SceneDraft holds one scene's wizard progress.
type SceneDraft struct {
	Title     string
	Summary   string
	Draft     string
	Confirmed bool
}

// NPCDraft holds one compiled NPC.
type NPCDraft struct {
	ID        string
	Name      string
	Content   string
	Confirmed bool
}

// Session is the per-connection wizard state. It is owned by exactly one
// connection; handlers run serially on the connection's read loop, so no
// locking is needed.
type Session struct {
	ID               string
	AdventureID      string
	Dials            *dials.State
	Outline          string
	OutlineConfirmed bool
	Scenes           map[int]*SceneDraft
	CurrentScene     int
	NPCs             []*NPCDraft
	Adversaries      map[string]int // adversary ID -> quantity
	Items            map[string]int // item ID -> quantity

	emitter *Emitter
}

// WizardService runs the adventure-configuration conversation: it wires
// the dial interpreter, focus sequencer and response composer to the
// event protocol, and drives generation and content lookups.
type WizardService struct {
	cfg        *config.Config
	generator  interfaces.Generator      // nil when no LLM is configured
	content    interfaces.ContentStore   // nil when the content DB is down
	adventures interfaces.AdventureStore // nil when the content DB is down
	sessions   *storage.RedisStore       // nil when Redis is down
}

func NewWizardService(cfg *config.Config, generator interfaces.Generator, content interfaces.ContentStore, adventures interfaces.AdventureStore, sessions *storage.RedisStore) *WizardService {
	return &WizardService{
		cfg:        cfg,
		generator:  generator,
		content:    content,
		adventures: adventures,
		sessions:   sessions,
	}
}

// NewSession creates the wizard state for a fresh connection, restoring
// persisted dial state when the session ID has been seen before.
func (s *WizardService) NewSession(ctx context.Context, sessionID string, emitter *Emitter) *Session {
	state := dials.NewState()
	if s.sessions != nil {
		if restored, err := s.sessions.LoadDialState(ctx, sessionID); err == nil {
			state = restored
		} else {
			log.Printf("[Wizard] Failed to restore session %s: %v", sessionID, err)
		}
	}

	return &Session{
		ID:          sessionID,
		AdventureID: uuid.New().String(),
		Dials:       state,
		Scenes:      make(map[int]*SceneDraft),
		Adversaries: make(map[string]int),
		Items:       make(map[string]int),
		emitter:     emitter,
	}
}

// BindHandlers builds the immutable handler set for one session.
func (s *WizardService) BindHandlers(sess *Session) HandlerMap {
	return HandlerMap{
		protocol.EventChatUserMessage: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.UserMessagePayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleUserMessage(ctx, sess, p)
		},
		protocol.EventDialUpdate: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.DialUpdatePayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleDialUpdate(ctx, sess, p)
		},
		protocol.EventDialConfirm: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.DialConfirmPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleDialConfirm(ctx, sess, p)
		},
		protocol.EventOutlineGenerate: func(ctx context.Context, raw json.RawMessage) {
			s.handleOutlineGenerate(ctx, sess)
		},
		protocol.EventOutlineFeedback: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.OutlineFeedbackPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleOutlineFeedback(ctx, sess, p)
		},
		protocol.EventOutlineConfirm: func(ctx context.Context, raw json.RawMessage) {
			s.handleOutlineConfirm(ctx, sess)
		},
		protocol.EventOutlineEditScene: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.OutlineEditScenePayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleOutlineEditScene(sess, p)
		},
		protocol.EventSceneGenerate: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.SceneGeneratePayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleSceneGenerate(ctx, sess, p.SceneNumber)
		},
		protocol.EventSceneFeedback: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.SceneFeedbackPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleSceneFeedback(ctx, sess, p)
		},
		protocol.EventSceneConfirm: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.SceneConfirmPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleSceneConfirm(sess, p.SceneNumber)
		},
		protocol.EventSceneNavigate: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.SceneNavigatePayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleSceneNavigate(sess, p.SceneNumber)
		},
		protocol.EventNPCCompile: func(ctx context.Context, raw json.RawMessage) {
			s.handleNPCCompile(ctx, sess)
		},
		protocol.EventNPCRefine: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.NPCRefinePayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleNPCRefine(ctx, sess, p)
		},
		protocol.EventNPCConfirm: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.NPCConfirmPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleNPCConfirm(sess, p.NPCID)
		},
		protocol.EventAdversaryLoad: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.AdversaryLoadPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleAdversaryLoad(sess, p)
		},
		protocol.EventAdversarySelect: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.AdversarySelectPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleAdversarySelect(sess, p.AdversaryID)
		},
		protocol.EventAdversaryDeselect: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.AdversaryDeselectPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleAdversaryDeselect(sess, p.AdversaryID)
		},
		protocol.EventAdversaryUpdateQuantity: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.AdversaryUpdateQuantityPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleAdversaryQuantity(sess, p.AdversaryID, p.Quantity)
		},
		protocol.EventAdversaryConfirm: func(ctx context.Context, raw json.RawMessage) {
			sess.emitter.AdversaryConfirmed()
		},
		protocol.EventItemLoad: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.ItemLoadPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleItemLoad(sess, p)
		},
		protocol.EventItemSelect: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.ItemSelectPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleItemSelect(sess, p.ItemID)
		},
		protocol.EventItemDeselect: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.ItemDeselectPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleItemDeselect(sess, p.ItemID)
		},
		protocol.EventItemUpdateQuantity: func(ctx context.Context, raw json.RawMessage) {
			var p protocol.ItemUpdateQuantityPayload
			if err := json.Unmarshal(raw, &p); err != nil {
				return
			}
			s.handleItemQuantity(sess, p.ItemID, p.Quantity)
		},
		protocol.EventItemConfirm: func(ctx context.Context, raw json.RawMessage) {
			sess.emitter.ItemConfirmed()
		},
	}
}

// --- chat & dials ---

// Human-readable dial labels used in acknowledgements.
var dialLabels = map[string]string{
	dials.DialPartySize:     "party size",
	dials.DialPartyTier:     "party tier",
	dials.DialSceneCount:    "scene count",
	dials.DialSessionLength: "session length",
	dials.DialTone:          "tone",
	dials.DialThemes:        "themes",
}

func (s *WizardService) handleUserMessage(ctx context.Context, sess *Session, p protocol.UserMessagePayload) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return
	}
	s.appendTranscript(ctx, sess, "user", content)

	focus, ok := dials.NextFocus(sess.Dials, p.SuggestedFocus)
	if !ok {
		s.streamReply(ctx, sess, dials.Compose("", sess.Dials), nil, "")
		return
	}

	var ack string
	var updates []protocol.DialUpdatePayload

	if update := dials.Interpret(focus, content); update != nil {
		if update.Confidence == dials.ConfidenceLow {
			// Not sure enough to apply: surface as a suggestion the
			// client can accept with an explicit dial:update.
			sess.emitter.DialSuggestion(update.DialID, update.Value, string(update.Confidence))
		} else {
			if err := sess.Dials.Set(update.DialID, update.Value); err == nil {
				sess.emitter.DialUpdated(update.DialID, update.Value, string(update.Confidence))
				updates = append(updates, protocol.DialUpdatePayload{
					DialID:     update.DialID,
					Value:      update.Value,
					Confidence: string(update.Confidence),
				})
				ack = fmt.Sprintf("Got it, %s noted. ", dialLabels[update.DialID])
				s.persistDials(ctx, sess)
			}
		}
	}

	nextFocus, ok := dials.NextFocus(sess.Dials, "")
	if !ok {
		nextFocus = ""
	}
	question := dials.Compose(nextFocus, sess.Dials)
	reply := ack + question

	// When an LLM is configured, let it phrase the reply around the
	// composed question; on failure fall back to the question as-is.
	if s.generator != nil && nextFocus != "" {
		genCtx, cancel := context.WithTimeout(ctx, s.cfg.AI.LLM.ChatTimeout)
		text, err := s.generator.ComposeReply(genCtx, content, question)
		cancel()
		if err != nil {
			log.Printf("[Wizard] Chat reply generation failed for session %s: %v", sess.ID, err)
		} else if strings.TrimSpace(text) != "" {
			reply = ack + text
		}
	}

	s.streamReply(ctx, sess, reply, updates, nextFocus)
}

func (s *WizardService) handleDialUpdate(ctx context.Context, sess *Session, p protocol.DialUpdatePayload) {
	if err := sess.Dials.Set(p.DialID, p.Value); err != nil {
		sess.emitter.Error(protocol.StreamError{
			Code:      protocol.CodeUnknown,
			Message:   fmt.Sprintf("unknown dial: %s", p.DialID),
			Retryable: false,
		})
		return
	}
	confidence := p.Confidence
	if confidence == "" {
		confidence = string(dials.ConfidenceHigh)
	}
	sess.emitter.DialUpdated(p.DialID, p.Value, confidence)
	s.persistDials(ctx, sess)
}

func (s *WizardService) handleDialConfirm(ctx context.Context, sess *Session, p protocol.DialConfirmPayload) {
	if err := sess.Dials.Confirm(p.DialID); err != nil {
		sess.emitter.Error(protocol.StreamError{
			Code:      protocol.CodeUnknown,
			Message:   fmt.Sprintf("cannot confirm %s before a value is set", p.DialID),
			Retryable: false,
		})
		return
	}
	s.persistDials(ctx, sess)

	focus, ok := dials.NextFocus(sess.Dials, "")
	if !ok {
		s.streamReply(ctx, sess, dials.Compose("", sess.Dials), nil, "")
		return
	}
	s.streamReply(ctx, sess, dials.Compose(focus, sess.Dials), nil, focus)
}

// streamReply sends a composed reply as a start/chunk/complete sequence,
// mirroring how LLM-generated text reaches the client.
func (s *WizardService) streamReply(ctx context.Context, sess *Session, text string, updates []protocol.DialUpdatePayload, focus string) {
	messageID := uuid.New().String()
	sess.emitter.AssistantStart(messageID)
	for _, chunk := range splitChunks(text, 48) {
		sess.emitter.AssistantChunk(messageID, chunk)
	}
	sess.emitter.AssistantComplete(protocol.AssistantCompletePayload{
		MessageID:   messageID,
		Content:     text,
		DialUpdates: updates,
		FocusDial:   focus,
	})
	s.appendTranscript(ctx, sess, "assistant", text)
}

// --- outline ---

func (s *WizardService) handleOutlineGenerate(ctx context.Context, sess *Session) {
	if s.generator == nil {
		sess.emitter.Error(generationUnavailable())
		return
	}
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.AI.LLM.GenerateTimeout)
	defer cancel()

	sess.emitter.OutlineDraftStart()
	text, err := s.generator.GenerateOutline(genCtx, sess.Dials, sess.emitter.OutlineDraftChunk)
	if err != nil {
		sess.emitter.Error(protocol.Classify(err, 0))
		return
	}
	sess.Outline = text
	sess.OutlineConfirmed = false
	sess.emitter.OutlineDraftComplete(text)
}

func (s *WizardService) handleOutlineFeedback(ctx context.Context, sess *Session, p protocol.OutlineFeedbackPayload) {
	if s.generator == nil {
		sess.emitter.Error(generationUnavailable())
		return
	}
	if sess.Outline == "" {
		sess.emitter.Error(protocol.StreamError{
			Code:      protocol.CodeUnknown,
			Message:   "There is no outline to revise yet.",
			Retryable: false,
		})
		return
	}
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.AI.LLM.GenerateTimeout)
	defer cancel()

	sess.emitter.OutlineDraftStart()
	text, err := s.generator.ReviseOutline(genCtx, sess.Dials, sess.Outline, p.Feedback, sess.emitter.OutlineDraftChunk)
	if err != nil {
		sess.emitter.Error(protocol.Classify(err, 0))
		return
	}
	sess.Outline = text
	sess.emitter.OutlineDraftComplete(text)
}

func (s *WizardService) handleOutlineConfirm(ctx context.Context, sess *Session) {
	sess.OutlineConfirmed = true
	sess.emitter.OutlineConfirmed()

	if s.adventures != nil {
		if err := s.adventures.SaveAdventure(sess.adventureModel()); err != nil {
			log.Printf("[Wizard] Failed to save adventure for session %s: %v", sess.ID, err)
		}
	}
}

func (s *WizardService) handleOutlineEditScene(sess *Session, p protocol.OutlineEditScenePayload) {
	scene := sess.scene(p.SceneNumber)
	if scene == nil {
		scene = &SceneDraft{}
		sess.Scenes[p.SceneNumber] = scene
	}
	if p.Title != "" {
		scene.Title = p.Title
	}
	if p.Summary != "" {
		scene.Summary = p.Summary
	}
	sess.emitter.OutlineSceneUpdated(p.SceneNumber, scene.Title, scene.Summary)
}

// --- scenes ---

func (s *WizardService) handleSceneGenerate(ctx context.Context, sess *Session, sceneNumber int) {
	if s.generator == nil {
		sess.emitter.SceneError(generationUnavailable())
		return
	}
	if !sess.validSceneNumber(sceneNumber) {
		sess.emitter.SceneError(protocol.StreamError{
			Code:      protocol.CodeUnknown,
			Message:   fmt.Sprintf("scene %d is outside this adventure", sceneNumber),
			Retryable: false,
		})
		return
	}
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.AI.LLM.GenerateTimeout)
	defer cancel()

	sess.emitter.SceneDraftStart(sceneNumber)
	text, err := s.generator.GenerateScene(genCtx, sess.Dials, sess.Outline, sceneNumber, func(delta string) {
		sess.emitter.SceneDraftChunk(sceneNumber, delta)
	})
	if err != nil {
		sess.emitter.SceneError(protocol.Classify(err, 0))
		return
	}

	scene := sess.scene(sceneNumber)
	if scene == nil {
		scene = &SceneDraft{}
		sess.Scenes[sceneNumber] = scene
	}
	scene.Draft = text
	scene.Confirmed = false
	sess.CurrentScene = sceneNumber
	sess.emitter.SceneDraftComplete(sceneNumber, text)
}

func (s *WizardService) handleSceneFeedback(ctx context.Context, sess *Session, p protocol.SceneFeedbackPayload) {
	if s.generator == nil {
		sess.emitter.SceneError(generationUnavailable())
		return
	}
	scene := sess.scene(p.SceneNumber)
	if scene == nil || scene.Draft == "" {
		sess.emitter.SceneError(protocol.StreamError{
			Code:      protocol.CodeUnknown,
			Message:   fmt.Sprintf("scene %d has no draft to revise", p.SceneNumber),
			Retryable: false,
		})
		return
	}
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.AI.LLM.GenerateTimeout)
	defer cancel()

	sess.emitter.SceneDraftStart(p.SceneNumber)
	text, err := s.generator.ReviseScene(genCtx, sess.Dials, scene.Draft, p.Feedback, p.SceneNumber, func(delta string) {
		sess.emitter.SceneDraftChunk(p.SceneNumber, delta)
	})
	if err != nil {
		sess.emitter.SceneError(protocol.Classify(err, 0))
		return
	}
	scene.Draft = text
	scene.Confirmed = false
	sess.emitter.SceneDraftComplete(p.SceneNumber, text)
}

func (s *WizardService) handleSceneConfirm(sess *Session, sceneNumber int) {
	scene := sess.scene(sceneNumber)
	if scene == nil {
		sess.emitter.SceneError(protocol.StreamError{
			Code:      protocol.CodeUnknown,
			Message:   fmt.Sprintf("scene %d has not been drafted", sceneNumber),
			Retryable: false,
		})
		return
	}
	scene.Confirmed = true
	sess.emitter.SceneConfirmed(sceneNumber)

	if s.adventures != nil {
		record := &models.AdventureScene{
			ID:          fmt.Sprintf("%s-scene-%d", sess.AdventureID, sceneNumber),
			AdventureID: sess.AdventureID,
			SceneNumber: sceneNumber,
			Title:       scene.Title,
			Summary:     scene.Summary,
			Draft:       scene.Draft,
			Confirmed:   true,
		}
		if err := s.adventures.SaveScene(record); err != nil {
			log.Printf("[Wizard] Failed to save scene %d for session %s: %v", sceneNumber, sess.ID, err)
		}
	}
}

func (s *WizardService) handleSceneNavigate(sess *Session, sceneNumber int) {
	if !sess.validSceneNumber(sceneNumber) {
		return
	}
	sess.CurrentScene = sceneNumber
	// Re-emit the stored draft so the client can render the scene it
	// navigated to without a regeneration round-trip.
	if scene := sess.scene(sceneNumber); scene != nil && scene.Draft != "" {
		sess.emitter.SceneDraftComplete(sceneNumber, scene.Draft)
	}
}

// --- NPCs ---

func (s *WizardService) handleNPCCompile(ctx context.Context, sess *Session) {
	if s.generator == nil {
		sess.emitter.NPCError(generationUnavailable())
		return
	}
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.AI.LLM.GenerateTimeout)
	defer cancel()

	sess.emitter.NPCCompileStart()
	text, err := s.generator.CompileNPCs(genCtx, sess.Dials, sess.Outline, sess.emitter.NPCCompileChunk)
	if err != nil {
		sess.emitter.NPCError(protocol.Classify(err, 0))
		return
	}

	sess.NPCs = parseNPCBlocks(text)
	refs := make([]protocol.NPCRef, len(sess.NPCs))
	for i, npc := range sess.NPCs {
		refs[i] = protocol.NPCRef{ID: npc.ID, Name: npc.Name}
	}
	sess.emitter.NPCCompileComplete(text, refs)
}

func (s *WizardService) handleNPCRefine(ctx context.Context, sess *Session, p protocol.NPCRefinePayload) {
	if s.generator == nil {
		sess.emitter.NPCError(generationUnavailable())
		return
	}
	npc := sess.npc(p.NPCID)
	if npc == nil {
		sess.emitter.NPCError(protocol.StreamError{
			Code:      protocol.CodeUnknown,
			Message:   "That character is not in the compiled cast.",
			Retryable: false,
		})
		return
	}
	genCtx, cancel := context.WithTimeout(ctx, s.cfg.AI.LLM.GenerateTimeout)
	defer cancel()

	text, err := s.generator.RefineNPC(genCtx, npc.Content, p.Instruction)
	if err != nil {
		sess.emitter.NPCError(protocol.Classify(err, 0))
		return
	}
	npc.Content = text
	npc.Confirmed = false
	sess.emitter.NPCRefined(npc.ID, text)
}

func (s *WizardService) handleNPCConfirm(sess *Session, npcID string) {
	npc := sess.npc(npcID)
	if npc == nil {
		sess.emitter.NPCError(protocol.StreamError{
			Code:      protocol.CodeUnknown,
			Message:   "That character is not in the compiled cast.",
			Retryable: false,
		})
		return
	}
	npc.Confirmed = true
	sess.emitter.NPCConfirmed(npc.ID)

	if s.adventures != nil {
		record := &models.AdventureNPC{
			ID:          npc.ID,
			AdventureID: sess.AdventureID,
			Name:        npc.Name,
			Description: npc.Content,
			Confirmed:   true,
		}
		if err := s.adventures.SaveNPC(record); err != nil {
			log.Printf("[Wizard] Failed to save NPC %s for session %s: %v", npc.ID, sess.ID, err)
		}
	}
}

// --- adversaries & items ---

func (s *WizardService) handleAdversaryLoad(sess *Session, p protocol.AdversaryLoadPayload) {
	if s.content == nil {
		sess.emitter.AdversaryError(contentUnavailable())
		return
	}
	tier := p.Tier
	if tier == "" {
		tier = dialStringValue(sess.Dials, dials.DialPartyTier)
	}
	found, err := s.content.FindAdversaries(tier, p.Role)
	if err != nil {
		sess.emitter.AdversaryError(protocol.Classify(err, 0))
		return
	}

	refs := make([]protocol.AdversaryRef, len(found))
	for i, adv := range found {
		refs[i] = protocol.AdversaryRef{ID: adv.ID, Name: adv.Name, Tier: adv.Tier, Role: adv.Role}
	}
	sess.emitter.AdversaryLoaded(refs)
}

func (s *WizardService) handleAdversarySelect(sess *Session, adversaryID string) {
	if adversaryID == "" {
		return
	}
	if _, ok := sess.Adversaries[adversaryID]; !ok {
		sess.Adversaries[adversaryID] = 1
	}
	sess.emitter.AdversarySelected(adversaryID, sess.Adversaries[adversaryID])
}

func (s *WizardService) handleAdversaryDeselect(sess *Session, adversaryID string) {
	delete(sess.Adversaries, adversaryID)
	sess.emitter.AdversaryDeselected(adversaryID)
}

func (s *WizardService) handleAdversaryQuantity(sess *Session, adversaryID string, quantity int) {
	if adversaryID == "" {
		return
	}
	if quantity <= 0 {
		s.handleAdversaryDeselect(sess, adversaryID)
		return
	}
	sess.Adversaries[adversaryID] = quantity
	sess.emitter.AdversarySelected(adversaryID, quantity)
}

func (s *WizardService) handleItemLoad(sess *Session, p protocol.ItemLoadPayload) {
	if s.content == nil {
		sess.emitter.ItemError(contentUnavailable())
		return
	}
	found, err := s.content.FindItems(p.Rarity)
	if err != nil {
		sess.emitter.ItemError(protocol.Classify(err, 0))
		return
	}

	refs := make([]protocol.ItemRef, len(found))
	for i, item := range found {
		refs[i] = protocol.ItemRef{ID: item.ID, Name: item.Name, Rarity: item.Rarity}
	}
	sess.emitter.ItemLoaded(refs)
}

func (s *WizardService) handleItemSelect(sess *Session, itemID string) {
	if itemID == "" {
		return
	}
	if _, ok := sess.Items[itemID]; !ok {
		sess.Items[itemID] = 1
	}
	sess.emitter.ItemSelected(itemID, sess.Items[itemID])
}

func (s *WizardService) handleItemDeselect(sess *Session, itemID string) {
	delete(sess.Items, itemID)
	sess.emitter.ItemDeselected(itemID)
}

func (s *WizardService) handleItemQuantity(sess *Session, itemID string, quantity int) {
	if itemID == "" {
		return
	}
	if quantity <= 0 {
		s.handleItemDeselect(sess, itemID)
		return
	}
	sess.Items[itemID] = quantity
	sess.emitter.ItemSelected(itemID, quantity)
}

// --- helpers ---

func (s *WizardService) persistDials(ctx context.Context, sess *Session) {
	if s.sessions == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.sessions.SaveDialState(saveCtx, sess.ID, sess.Dials, s.cfg.Session.TTL); err != nil {
		log.Printf("[Wizard] Failed to persist dials for session %s: %v", sess.ID, err)
	}
}

func (s *WizardService) appendTranscript(ctx context.Context, sess *Session, role, content string) {
	if s.sessions == nil {
		return
	}
	saveCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	entry := storage.TranscriptEntry{Role: role, Content: content, Timestamp: time.Now().Unix()}
	if err := s.sessions.AppendTranscript(saveCtx, sess.ID, entry, s.cfg.Session.TTL); err != nil {
		log.Printf("[Wizard] Failed to append transcript for session %s: %v", sess.ID, err)
	}
}

func (sess *Session) scene(number int) *SceneDraft {
	return sess.Scenes[number]
}

func (sess *Session) npc(id string) *NPCDraft {
	for _, npc := range sess.NPCs {
		if npc.ID == id {
			return npc
		}
	}
	return nil
}

// validSceneNumber checks a scene number against the configured scene
// count, falling back to the schema maximum when the dial is unset.
func (sess *Session) validSceneNumber(number int) bool {
	max := dials.Lookup(dials.DialSceneCount).Max
	if v, ok := sess.Dials.Get(dials.DialSceneCount); ok {
		switch n := v.(type) {
		case int:
			max = n
		case float64:
			max = int(n)
		}
	}
	return number >= 1 && number <= max
}

func (sess *Session) adventureModel() *models.Adventure {
	dialsJSON, _ := sess.Dials.MarshalBinary()
	status := "drafting"
	if sess.OutlineConfirmed {
		status = "complete"
	}
	return &models.Adventure{
		ID:        sess.AdventureID,
		SessionID: sess.ID,
		Status:    status,
		DialsJSON: string(dialsJSON),
		Outline:   sess.Outline,
	}
}

func generationUnavailable() protocol.StreamError {
	return protocol.StreamError{
		Code:      protocol.CodeServerError,
		Message:   "Content generation is not available right now. Try again shortly.",
		Retryable: true,
	}
}

func contentUnavailable() protocol.StreamError {
	return protocol.StreamError{
		Code:      protocol.CodeServerError,
		Message:   "The content database is not available right now. Try again shortly.",
		Retryable: true,
	}
}

func dialStringValue(state *dials.State, dialID string) string {
	v, ok := state.Get(dialID)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// splitChunks breaks text into word-aligned chunks of roughly size runes
// so composed replies stream the same way LLM output does.
func splitChunks(text string, size int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current strings.Builder
	for _, word := range words {
		if current.Len() > 0 && current.Len()+1+len(word) > size {
			chunks = append(chunks, current.String()+" ")
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// parseNPCBlocks splits compiled NPC text into individually addressable
// characters. Blocks are blank-line separated; the first line names the
// character.
func parseNPCBlocks(text string) []*NPCDraft {
	var npcs []*NPCDraft
	for _, block := range strings.Split(text, "\n\n") {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.SplitN(block, "\n", 2)
		name := strings.TrimSpace(strings.TrimLeft(lines[0], "#*-0123456789. "))
		if name == "" {
			continue
		}
		npcs = append(npcs, &NPCDraft{
			ID:      uuid.New().String(),
			Name:    name,
			Content: block,
		})
	}
	return npcs
}
