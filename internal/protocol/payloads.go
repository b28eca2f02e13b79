package protocol

// Typed payload shapes for every event in the vocabulary. Optional
// fields carry omitempty so an absent field is omitted from the wire
// rather than serialized as null.

// --- client -> server ---

// UserMessagePayload carries a free-text chat message. SuggestedFocus
// optionally names the dial the client UI currently has in focus.
type UserMessagePayload struct {
	Content        string `json:"content"`
	SuggestedFocus string `json:"suggestedFocus,omitempty"`
}

// DialUpdatePayload is shared by the client's explicit dial:update and
// the server's dial:updated / dial:suggestion events.
type DialUpdatePayload struct {
	DialID     string      `json:"dialId"`
	Value      interface{} `json:"value"`
	Confidence string      `json:"confidence,omitempty"`
}

type DialConfirmPayload struct {
	DialID string `json:"dialId"`
}

type OutlineGeneratePayload struct{}

type OutlineFeedbackPayload struct {
	Feedback string `json:"feedback"`
}

type OutlineConfirmPayload struct{}

type OutlineEditScenePayload struct {
	SceneNumber int    `json:"sceneNumber"`
	Title       string `json:"title,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

type SceneGeneratePayload struct {
	SceneNumber int `json:"sceneNumber"`
}

type SceneFeedbackPayload struct {
	SceneNumber int    `json:"sceneNumber"`
	Feedback    string `json:"feedback"`
}

type SceneConfirmPayload struct {
	SceneNumber int `json:"sceneNumber"`
}

type SceneNavigatePayload struct {
	SceneNumber int `json:"sceneNumber"`
}

type NPCCompilePayload struct{}

type NPCRefinePayload struct {
	NPCID       string `json:"npcId"`
	Instruction string `json:"instruction"`
}

type NPCConfirmPayload struct {
	NPCID string `json:"npcId"`
}

// AdversaryLoadPayload filters the content lookup; both fields optional.
type AdversaryLoadPayload struct {
	Tier string `json:"tier,omitempty"`
	Role string `json:"role,omitempty"`
}

type AdversarySelectPayload struct {
	AdversaryID string `json:"adversaryId"`
}

type AdversaryDeselectPayload struct {
	AdversaryID string `json:"adversaryId"`
}

type AdversaryUpdateQuantityPayload struct {
	AdversaryID string `json:"adversaryId"`
	Quantity    int    `json:"quantity"`
}

type AdversaryConfirmPayload struct{}

type ItemLoadPayload struct {
	Rarity string `json:"rarity,omitempty"`
}

type ItemSelectPayload struct {
	ItemID string `json:"itemId"`
}

type ItemDeselectPayload struct {
	ItemID string `json:"itemId"`
}

type ItemUpdateQuantityPayload struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type ItemConfirmPayload struct{}

// --- server -> client ---

type ConnectedPayload struct {
	SessionID string `json:"sessionId"`
	Message   string `json:"message,omitempty"`
}

type AssistantStartPayload struct {
	MessageID string `json:"messageId"`
}

type AssistantChunkPayload struct {
	MessageID string `json:"messageId"`
	Content   string `json:"content"`
}

// AssistantCompletePayload closes a streamed reply. DialUpdates and
// FocusDial are present only when the message changed dial state.
type AssistantCompletePayload struct {
	MessageID   string              `json:"messageId"`
	Content     string              `json:"content"`
	DialUpdates []DialUpdatePayload `json:"dialUpdates,omitempty"`
	FocusDial   string              `json:"focusDial,omitempty"`
}

type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

type OutlineDraftStartPayload struct{}

type OutlineDraftChunkPayload struct {
	Content string `json:"content"`
}

type OutlineDraftCompletePayload struct {
	Content string `json:"content"`
}

type OutlineConfirmedPayload struct{}

type OutlineSceneUpdatedPayload struct {
	SceneNumber int    `json:"sceneNumber"`
	Title       string `json:"title,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

type SceneDraftStartPayload struct {
	SceneNumber int `json:"sceneNumber"`
}

type SceneDraftChunkPayload struct {
	SceneNumber int    `json:"sceneNumber"`
	Content     string `json:"content"`
}

type SceneDraftCompletePayload struct {
	SceneNumber int    `json:"sceneNumber"`
	Content     string `json:"content"`
}

type SceneConfirmedPayload struct {
	SceneNumber int `json:"sceneNumber"`
}

type NPCCompileStartPayload struct{}

type NPCCompileChunkPayload struct {
	Content string `json:"content"`
}

// NPCRef identifies one compiled NPC so later refine/confirm events can
// target it.
type NPCRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NPCCompileCompletePayload struct {
	Content string   `json:"content"`
	NPCs    []NPCRef `json:"npcs,omitempty"`
}

type NPCRefinedPayload struct {
	NPCID   string `json:"npcId"`
	Content string `json:"content"`
}

type NPCConfirmedPayload struct {
	NPCID string `json:"npcId"`
}

// AdversaryRef is the wire shape of one content-database adversary.
type AdversaryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tier string `json:"tier,omitempty"`
	Role string `json:"role,omitempty"`
}

type AdversaryLoadedPayload struct {
	Adversaries []AdversaryRef `json:"adversaries"`
}

type AdversarySelectedPayload struct {
	AdversaryID string `json:"adversaryId"`
	Quantity    int    `json:"quantity"`
}

type AdversaryDeselectedPayload struct {
	AdversaryID string `json:"adversaryId"`
}

type AdversaryConfirmedPayload struct{}

// ItemRef is the wire shape of one content-database item.
type ItemRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Rarity string `json:"rarity,omitempty"`
}

type ItemLoadedPayload struct {
	Items []ItemRef `json:"items"`
}

type ItemSelectedPayload struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

type ItemDeselectedPayload struct {
	ItemID string `json:"itemId"`
}

type ItemConfirmedPayload struct{}
