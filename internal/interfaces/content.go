package interfaces

import "questforge/server/internal/models"

// ContentStore looks up pre-written content from the adventure database.
type ContentStore interface {
	FindFrames(tier string) ([]models.Frame, error)
	FindAdversaries(tier, role string) ([]models.Adversary, error)
	FindItems(rarity string) ([]models.Item, error)
}

// AdventureStore persists wizard output.
type AdventureStore interface {
	SaveAdventure(adv *models.Adventure) error
	SaveScene(scene *models.AdventureScene) error
	SaveNPC(npc *models.AdventureNPC) error
}
