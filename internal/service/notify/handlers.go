package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/mailer"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/mqtt"
)

// publishRoomStatus 房态变化推送到看板
func (d *Dispatcher) publishRoomStatus(ctx context.Context, e *models.OutboxEvent) (bool, error) {
	if d.channels.Publisher == nil {
		return true, nil
	}

	p := e.Payload
	msg := mqtt.RoomStatusPayload{
		RoomNumber:     str(p, "number"),
		PreviousStatus: str(p, "previous_status"),
		Status:         str(p, "status"),
		Action:         str(p, "action"),
		Timestamp:      d.timestamp(p),
	}
	var topic string
	if id, ok := int64Of(p, "room_id"); ok {
		msg.RoomID = &id
		topic = mqtt.RoomStatusTopic(d.cfg.TopicPrefix, msg.RoomNumber)
	} else if id, ok := int64Of(p, "accommodation_type_id"); ok {
		msg.AccommodationTypeID = &id
		topic = mqtt.AccommodationStatusTopic(d.cfg.TopicPrefix, id)
	} else {
		return false, fmt.Errorf("room status event %d without target", e.ID)
	}
	if id, ok := int64Of(p, "stay_id"); ok {
		msg.StayID = &id
	}
	if err := d.channels.Publisher.Publish(ctx, topic, msg); err != nil {
		return false, err
	}
	metrics.GetMetrics().RecordMQTTMessage("room_status", "publish")
	return false, nil
}

// sendReservationSMS 预订确认短信，客人无手机号时跳过
func (d *Dispatcher) sendReservationSMS(ctx context.Context, e *models.OutboxEvent) (bool, error) {
	phone := strings.TrimSpace(str(e.Payload, "phone"))
	if d.channels.SMS == nil || d.cfg.ReservationTemplate == "" || phone == "" {
		return true, nil
	}
	return false, d.channels.SMS.Send(ctx, phone, d.cfg.ReservationTemplate, map[string]string{
		"name":     str(e.Payload, "guest_name"),
		"order":    str(e.Payload, "order_number"),
		"checkin":  str(e.Payload, "check_in"),
		"checkout": str(e.Payload, "check_out"),
		"total":    str(e.Payload, "total"),
	})
}

// mailReceipt 退房后发送 PDF 凭证，客人无邮箱时跳过
func (d *Dispatcher) mailReceipt(ctx context.Context, e *models.OutboxEvent) (bool, error) {
	to := strings.TrimSpace(str(e.Payload, "email"))
	if d.channels.Mailer == nil || d.channels.Receipts == nil || to == "" {
		return true, nil
	}
	stayID, ok := int64Of(e.Payload, "stay_id")
	if !ok {
		stayID = e.AggregateID
	}

	receipt, err := d.channels.Receipts.Receipt(ctx, stayID)
	if err != nil {
		return false, err
	}
	order := str(e.Payload, "order_number")
	return false, d.channels.Mailer.Send(ctx, &mailer.Message{
		To:      to,
		Subject: strings.TrimSpace(fmt.Sprintf("Comprobante de estadía %s %s", order, d.cfg.HotelName)),
		Text: fmt.Sprintf("Hola %s,\n\nAdjuntamos el comprobante de su estadía %s por un total de %s.\n\nGracias por su visita.\n%s",
			str(e.Payload, "guest_name"), order, str(e.Payload, "total"), d.cfg.HotelName),
		Attachments: []mailer.Attachment{
			{FileName: receipt.FileName, ContentType: "application/pdf", Content: receipt.Content},
		},
	})
}

func (d *Dispatcher) timestamp(p models.JSON) int64 {
	if s := str(p, "changed_at"); s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.Unix()
		}
	}
	return d.now().Unix()
}

func str(p models.JSON, key string) string {
	switch v := p[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// int64Of 读取数字字段，兼容 JSON 解码后的 float64
func int64Of(p models.JSON, key string) (int64, bool) {
	switch v := p[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
