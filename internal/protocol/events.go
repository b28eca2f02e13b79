package protocol

// EventType names one message in the wizard's wire vocabulary. The set
// is closed: client and server enumerations move in lockstep, and
// anything outside it is rejected at the parse or dispatch boundary.
type EventType string

// Client -> server events.
const (
	EventChatUserMessage EventType = "chat:user_message"

	EventDialUpdate  EventType = "dial:update"
	EventDialConfirm EventType = "dial:confirm"

	EventOutlineGenerate  EventType = "outline:generate"
	EventOutlineFeedback  EventType = "outline:feedback"
	EventOutlineConfirm   EventType = "outline:confirm"
	EventOutlineEditScene EventType = "outline:edit_scene"

	EventSceneGenerate EventType = "scene:generate"
	EventSceneFeedback EventType = "scene:feedback"
	EventSceneConfirm  EventType = "scene:confirm"
	EventSceneNavigate EventType = "scene:navigate"

	EventNPCCompile EventType = "npc:compile"
	EventNPCRefine  EventType = "npc:refine"
	EventNPCConfirm EventType = "npc:confirm"

	EventAdversaryLoad           EventType = "adversary:load"
	EventAdversarySelect         EventType = "adversary:select"
	EventAdversaryDeselect       EventType = "adversary:deselect"
	EventAdversaryUpdateQuantity EventType = "adversary:update_quantity"
	EventAdversaryConfirm        EventType = "adversary:confirm"

	EventItemLoad           EventType = "item:load"
	EventItemSelect         EventType = "item:select"
	EventItemDeselect       EventType = "item:deselect"
	EventItemUpdateQuantity EventType = "item:update_quantity"
	EventItemConfirm        EventType = "item:confirm"
)

// Server -> client events.
const (
	EventConnected EventType = "connected"

	EventChatAssistantStart    EventType = "chat:assistant_start"
	EventChatAssistantChunk    EventType = "chat:assistant_chunk"
	EventChatAssistantComplete EventType = "chat:assistant_complete"

	EventDialUpdated    EventType = "dial:updated"
	EventDialSuggestion EventType = "dial:suggestion"

	EventError EventType = "error"

	EventOutlineDraftStart    EventType = "outline:draft_start"
	EventOutlineDraftChunk    EventType = "outline:draft_chunk"
	EventOutlineDraftComplete EventType = "outline:draft_complete"
	EventOutlineConfirmed     EventType = "outline:confirmed"
	EventOutlineSceneUpdated  EventType = "outline:scene_updated"

	EventSceneDraftStart    EventType = "scene:draft_start"
	EventSceneDraftChunk    EventType = "scene:draft_chunk"
	EventSceneDraftComplete EventType = "scene:draft_complete"
	EventSceneConfirmed     EventType = "scene:confirmed"
	EventSceneError         EventType = "scene:error"

	EventNPCCompileStart    EventType = "npc:compile_start"
	EventNPCCompileChunk    EventType = "npc:compile_chunk"
	EventNPCCompileComplete EventType = "npc:compile_complete"
	EventNPCRefined         EventType = "npc:refined"
	EventNPCConfirmed       EventType = "npc:confirmed"
	EventNPCError           EventType = "npc:error"

	EventAdversaryLoaded     EventType = "adversary:loaded"
	EventAdversarySelected   EventType = "adversary:selected"
	EventAdversaryDeselected EventType = "adversary:deselected"
	EventAdversaryConfirmed  EventType = "adversary:confirmed"
	EventAdversaryError      EventType = "adversary:error"

	EventItemLoaded     EventType = "item:loaded"
	EventItemSelected   EventType = "item:selected"
	EventItemDeselected EventType = "item:deselected"
	EventItemConfirmed  EventType = "item:confirmed"
	EventItemError      EventType = "item:error"
)

// SSE event names used by the request-scoped chat stream.
const (
	SSEChatStart  = "chat:start"
	SSEChatDelta  = "chat:delta"
	SSEChatEnd    = "chat:end"
	SSEToolStart  = "tool:start"
	SSEToolEnd    = "tool:end"
	SSEPanelSpark = "panel:spark"
	SSEUIReady    = "ui:ready"
	SSEError      = "error"
)

// clientEvents is the inbound whitelist checked by ParseIncoming.
var clientEvents = map[EventType]bool{
	EventChatUserMessage:         true,
	EventDialUpdate:              true,
	EventDialConfirm:             true,
	EventOutlineGenerate:         true,
	EventOutlineFeedback:         true,
	EventOutlineConfirm:          true,
	EventOutlineEditScene:        true,
	EventSceneGenerate:           true,
	EventSceneFeedback:           true,
	EventSceneConfirm:            true,
	EventSceneNavigate:           true,
	EventNPCCompile:              true,
	EventNPCRefine:               true,
	EventNPCConfirm:              true,
	EventAdversaryLoad:           true,
	EventAdversarySelect:         true,
	EventAdversaryDeselect:       true,
	EventAdversaryUpdateQuantity: true,
	EventAdversaryConfirm:        true,
	EventItemLoad:                true,
	EventItemSelect:              true,
	EventItemDeselect:            true,
	EventItemUpdateQuantity:      true,
	EventItemConfirm:             true,
}

// IsClientEvent reports whether t is a recognized client->server type.
func IsClientEvent(t EventType) bool {
	return clientEvents[t]
}

// serverEvents is the inbound whitelist checked by the transport client.
var serverEvents = map[EventType]bool{
	EventConnected:             true,
	EventChatAssistantStart:    true,
	EventChatAssistantChunk:    true,
	EventChatAssistantComplete: true,
	EventDialUpdated:           true,
	EventDialSuggestion:        true,
	EventError:                 true,
	EventOutlineDraftStart:     true,
	EventOutlineDraftChunk:     true,
	EventOutlineDraftComplete:  true,
	EventOutlineConfirmed:      true,
	EventOutlineSceneUpdated:   true,
	EventSceneDraftStart:       true,
	EventSceneDraftChunk:       true,
	EventSceneDraftComplete:    true,
	EventSceneConfirmed:        true,
	EventSceneError:            true,
	EventNPCCompileStart:       true,
	EventNPCCompileChunk:       true,
	EventNPCCompileComplete:    true,
	EventNPCRefined:            true,
	EventNPCConfirmed:          true,
	EventNPCError:              true,
	EventAdversaryLoaded:       true,
	EventAdversarySelected:     true,
	EventAdversaryDeselected:   true,
	EventAdversaryConfirmed:    true,
	EventAdversaryError:        true,
	EventItemLoaded:            true,
	EventItemSelected:          true,
	EventItemDeselected:        true,
	EventItemConfirmed:         true,
	EventItemError:             true,
}

// IsServerEvent reports whether t is a recognized server->client type.
func IsServerEvent(t EventType) bool {
	return serverEvents[t]
}
