package mqtt

import (
	"fmt"
	"strings"
)

// DefaultTopicPrefix 默认主题前缀
const DefaultTopicPrefix = "hotel"

// RoomStatusTopic 房间房态主题，如 hotel/rooms/101/status
func RoomStatusTopic(prefix, roomNumber string) string {
	return fmt.Sprintf("%s/rooms/%s/status", topicPrefix(prefix), sanitize(roomNumber))
}

// AccommodationStatusTopic 整套住宿房态主题
func AccommodationStatusTopic(prefix string, typeID int64) string {
	return fmt.Sprintf("%s/accommodations/%d/status", topicPrefix(prefix), typeID)
}

// RoomStatusPayload 房态看板消息
type RoomStatusPayload struct {
	RoomID              *int64 `json:"room_id,omitempty"`
	RoomNumber          string `json:"room_number,omitempty"`
	AccommodationTypeID *int64 `json:"accommodation_type_id,omitempty"`
	PreviousStatus      string `json:"previous_status,omitempty"`
	Status              string `json:"status"`
	Action              string `json:"action"`
	StayID              *int64 `json:"stay_id,omitempty"`
	Timestamp           int64  `json:"timestamp"`
}

func topicPrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return DefaultTopicPrefix
	}
	return prefix
}

// sanitize 去掉主题中的通配符和分隔符
func sanitize(segment string) string {
	r := strings.NewReplacer("/", "-", "+", "", "#", "", " ", "")
	return r.Replace(strings.TrimSpace(segment))
}
