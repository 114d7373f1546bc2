package model

// Space usage states as stored in the 使用狀態 column.  Only spaces in
// the 抽籤 state participate in the lottery draw; 保障 spaces are handed
// out directly to protected categories.
const (
    UsageLottery  = "抽籤"
    UsageReserved = "保障"
)

// ParkingSpace is one space in the static garage inventory.  Rows are
// mutated only by administrative reassignment.
//
// Fields:
//  SpaceID     – space identifier, primary key.
//  UsageStatus – one of the usage constants above.
//  Note        – free-form administrative note.
type ParkingSpace struct {
    SpaceID     string `json:"space_id"`     // parking_spaces.space_id
    UsageStatus string `json:"usage_status"` // parking_spaces.usage_status
    Note        string `json:"note"`         // parking_spaces.note
}
