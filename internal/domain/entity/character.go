package entity

// CharacterProfile 故事角色档案
type CharacterProfile struct {
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Traits           []string `json:"traits"`
	Goal             string   `json:"goal"`
	InternalConflict string   `json:"internal_conflict"`
}
