package model

// Collection 對應檔案中唯一一個物件 { "slot_games": [...] }。
type Collection struct {
	SlotGames []SlotGame `json:"slot_games"`
}

// Document 是 stake.json 的完整形狀：單一元素陣列包住 Collection。
type Document []Collection

// NewDocument 以給定的 slots 組出可寫回檔案的 Document。
func NewDocument(slots []SlotGame) Document {
	if slots == nil {
		slots = []SlotGame{}
	}
	return Document{{SlotGames: slots}}
}
