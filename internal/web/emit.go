package web

import (
	"log"

	"questforge/server/internal/protocol"
)

// EnvelopeWriter is the outbound half of a connection. *Client satisfies
// it; tests substitute an in-memory recorder.
type EnvelopeWriter interface {
	WriteEnvelope(protocol.Envelope)
}

// Emitter owns the server->client vocabulary: one helper per event name,
// each constructing exactly the envelope shape its type documents.
type Emitter struct {
	w EnvelopeWriter
}

func NewEmitter(w EnvelopeWriter) *Emitter {
	return &Emitter{w: w}
}

func (e *Emitter) emit(t protocol.EventType, payload interface{}) {
	env, err := protocol.NewEnvelope(t, payload)
	if err != nil {
		log.Printf("[Emit] Failed to build %s envelope: %v", t, err)
		return
	}
	e.w.WriteEnvelope(env)
}

func (e *Emitter) Connected(sessionID, message string) {
	e.emit(protocol.EventConnected, protocol.ConnectedPayload{SessionID: sessionID, Message: message})
}

func (e *Emitter) AssistantStart(messageID string) {
	e.emit(protocol.EventChatAssistantStart, protocol.AssistantStartPayload{MessageID: messageID})
}

func (e *Emitter) AssistantChunk(messageID, content string) {
	e.emit(protocol.EventChatAssistantChunk, protocol.AssistantChunkPayload{MessageID: messageID, Content: content})
}

func (e *Emitter) AssistantComplete(p protocol.AssistantCompletePayload) {
	e.emit(protocol.EventChatAssistantComplete, p)
}

func (e *Emitter) DialUpdated(dialID string, value interface{}, confidence string) {
	e.emit(protocol.EventDialUpdated, protocol.DialUpdatePayload{DialID: dialID, Value: value, Confidence: confidence})
}

func (e *Emitter) DialSuggestion(dialID string, value interface{}, confidence string) {
	e.emit(protocol.EventDialSuggestion, protocol.DialUpdatePayload{DialID: dialID, Value: value, Confidence: confidence})
}

func (e *Emitter) Error(se protocol.StreamError) {
	e.emit(protocol.EventError, protocol.ErrorPayload{Code: se.Code, Message: se.Message, Retryable: se.Retryable})
}

func (e *Emitter) OutlineDraftStart() {
	e.emit(protocol.EventOutlineDraftStart, protocol.OutlineDraftStartPayload{})
}

func (e *Emitter) OutlineDraftChunk(content string) {
	e.emit(protocol.EventOutlineDraftChunk, protocol.OutlineDraftChunkPayload{Content: content})
}

func (e *Emitter) OutlineDraftComplete(content string) {
	e.emit(protocol.EventOutlineDraftComplete, protocol.OutlineDraftCompletePayload{Content: content})
}

func (e *Emitter) OutlineConfirmed() {
	e.emit(protocol.EventOutlineConfirmed, protocol.OutlineConfirmedPayload{})
}

func (e *Emitter) OutlineSceneUpdated(sceneNumber int, title, summary string) {
	e.emit(protocol.EventOutlineSceneUpdated, protocol.OutlineSceneUpdatedPayload{SceneNumber: sceneNumber, Title: title, Summary: summary})
}

func (e *Emitter) SceneDraftStart(sceneNumber int) {
	e.emit(protocol.EventSceneDraftStart, protocol.SceneDraftStartPayload{SceneNumber: sceneNumber})
}

func (e *Emitter) SceneDraftChunk(sceneNumber int, content string) {
	e.emit(protocol.EventSceneDraftChunk, protocol.SceneDraftChunkPayload{SceneNumber: sceneNumber, Content: content})
}

func (e *Emitter) SceneDraftComplete(sceneNumber int, content string) {
	e.emit(protocol.EventSceneDraftComplete, protocol.SceneDraftCompletePayload{SceneNumber: sceneNumber, Content: content})
}

func (e *Emitter) SceneConfirmed(sceneNumber int) {
	e.emit(protocol.EventSceneConfirmed, protocol.SceneConfirmedPayload{SceneNumber: sceneNumber})
}

func (e *Emitter) SceneError(se protocol.StreamError) {
	e.emit(protocol.EventSceneError, protocol.ErrorPayload{Code: se.Code, Message: se.Message, Retryable: se.Retryable})
}

func (e *Emitter) NPCCompileStart() {
	e.emit(protocol.EventNPCCompileStart, protocol.NPCCompileStartPayload{})
}

func (e *Emitter) NPCCompileChunk(content string) {
	e.emit(protocol.EventNPCCompileChunk, protocol.NPCCompileChunkPayload{Content: content})
}

func (e *Emitter) NPCCompileComplete(content string, npcs []protocol.NPCRef) {
	e.emit(protocol.EventNPCCompileComplete, protocol.NPCCompileCompletePayload{Content: content, NPCs: npcs})
}

func (e *Emitter) NPCRefined(npcID, content string) {
	e.emit(protocol.EventNPCRefined, protocol.NPCRefinedPayload{NPCID: npcID, Content: content})
}

func (e *Emitter) NPCConfirmed(npcID string) {
	e.emit(protocol.EventNPCConfirmed, protocol.NPCConfirmedPayload{NPCID: npcID})
}

func (e *Emitter) NPCError(se protocol.StreamError) {
	e.emit(protocol.EventNPCError, protocol.ErrorPayload{Code: se.Code, Message: se.Message, Retryable: se.Retryable})
}

func (e *Emitter) AdversaryLoaded(adversaries []protocol.AdversaryRef) {
	e.emit(protocol.EventAdversaryLoaded, protocol.AdversaryLoadedPayload{Adversaries: adversaries})
}

func (e *Emitter) AdversarySelected(adversaryID string, quantity int) {
	e.emit(protocol.EventAdversarySelected, protocol.AdversarySelectedPayload{AdversaryID: adversaryID, Quantity: quantity})
}

func (e *Emitter) AdversaryDeselected(adversaryID string) {
	e.emit(protocol.EventAdversaryDeselected, protocol.AdversaryDeselectedPayload{AdversaryID: adversaryID})
}

func (e *Emitter) AdversaryConfirmed() {
	e.emit(protocol.EventAdversaryConfirmed, protocol.AdversaryConfirmedPayload{})
}

func (e *Emitter) AdversaryError(se protocol.StreamError) {
	e.emit(protocol.EventAdversaryError, protocol.ErrorPayload{Code: se.Code, Message: se.Message, Retryable: se.Retryable})
}

func (e *Emitter) ItemLoaded(items []protocol.ItemRef) {
	e.emit(protocol.EventItemLoaded, protocol.ItemLoadedPayload{Items: items})
}

func (e *Emitter) ItemSelected(itemID string, quantity int) {
	e.emit(protocol.EventItemSelected, protocol.ItemSelectedPayload{ItemID: itemID, Quantity: quantity})
}

func (e *Emitter) ItemDeselected(itemID string) {
	e.emit(protocol.EventItemDeselected, protocol.ItemDeselectedPayload{ItemID: itemID})
}

func (e *Emitter) ItemConfirmed() {
	e.emit(protocol.EventItemConfirmed, protocol.ItemConfirmedPayload{})
}

func (e *Emitter) ItemError(se protocol.StreamError) {
	e.emit(protocol.EventItemError, protocol.ErrorPayload{Code: se.Code, Message: se.Message, Retryable: se.Retryable})
}
