package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk-backend/internal/models"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/repository"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/service/report"
	"github.com/dumeirei/hotel-frontdesk-backend/internal/testutil"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/mailer"
	"github.com/dumeirei/hotel-frontdesk-backend/pkg/mqtt"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) Publish(ctx context.Context, topic string, payload interface{}) error {
	return m.Called(ctx, topic, payload).Error(0)
}

type mockSMS struct{ mock.Mock }

func (m *mockSMS) Send(ctx context.Context, phone, templateCode string, params map[string]string) error {
	return m.Called(ctx, phone, templateCode, params).Error(0)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, msg *mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockReceipts struct{ mock.Mock }

func (m *mockReceipts) Receipt(ctx context.Context, stayID int64) (*report.Receipt, error) {
	args := m.Called(ctx, stayID)
	r, _ := args.Get(0).(*report.Receipt)
	return r, args.Error(1)
}

var fixedNow = time.Date(2026, 10, 19, 15, 0, 0, 0, time.UTC)

func newDispatcher(t *testing.T, channels Channels) (*Dispatcher, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	d := NewDispatcher(db, Config{
		BatchSize:           10,
		MaxAttempts:         3,
		RetryBackoff:        time.Minute,
		ReservationTemplate: "SMS_RESERVA",
		HotelName:           "Hotel Prueba",
	}, channels)
	d.now = func() time.Time { return fixedNow }
	return d, db
}

func enqueue(t *testing.T, db *gorm.DB, topic string, payload models.JSON) *models.OutboxEvent {
	t.Helper()
	e := &models.OutboxEvent{
		Topic:         topic,
		Aggregate:     "stay",
		AggregateID:   1,
		Payload:       payload,
		NextAttemptAt: fixedNow.Add(-time.Minute),
	}
	require.NoError(t, repository.NewOutboxRepository(db).Create(context.Background(), e))
	return e
}

func reload(t *testing.T, db *gorm.DB, id int64) *models.OutboxEvent {
	t.Helper()
	var e models.OutboxEvent
	require.NoError(t, db.First(&e, id).Error)
	return &e
}

func TestDispatchPending_RoutesByTopic(t *testing.T) {
	pub := &mockPublisher{}
	smsSender := &mockSMS{}
	mail := &mockMailer{}
	receipts := &mockReceipts{}
	d, db := newDispatcher(t, Channels{Publisher: pub, SMS: smsSender, Mailer: mail, Receipts: receipts})
	ctx := context.Background()

	room := enqueue(t, db, models.TopicRoomStatusChanged, models.JSON{
		"room_id": 4, "number": "101", "previous_status": "Ocupado", "status": "Limpieza",
		"action": "CHECK-OUT", "changed_at": fixedNow.Format(time.RFC3339),
	})
	reserved := enqueue(t, db, models.TopicStayReserved, models.JSON{
		"stay_id": 9, "order_number": "#000009", "guest_name": "Ana Gómez", "phone": "3001234567",
		"check_in": "2026-10-20", "check_out": "2026-10-22", "total": "$160.000",
	})
	completed := enqueue(t, db, models.TopicStayCompleted, models.JSON{
		"stay_id": 9, "order_number": "#000009", "guest_name": "Ana Gómez", "email": "ana@correo.co", "total": "$160.000",
	})

	pub.On("Publish", mock.Anything, "hotel/rooms/101/status", mock.MatchedBy(func(p mqtt.RoomStatusPayload) bool {
		return p.Status == "Limpieza" && p.PreviousStatus == "Ocupado" && *p.RoomID == 4 && p.Timestamp == fixedNow.Unix()
	})).Return(nil).Once()
	smsSender.On("Send", mock.Anything, "3001234567", "SMS_RESERVA", mock.MatchedBy(func(p map[string]string) bool {
		return p["order"] == "#000009" && p["checkin"] == "2026-10-20"
	})).Return(nil).Once()
	receipts.On("Receipt", mock.Anything, int64(9)).
		Return(&report.Receipt{FileName: "comprobante-000009.pdf", Content: []byte("%PDF")}, nil).Once()
	mail.On("Send", mock.Anything, mock.MatchedBy(func(m *mailer.Message) bool {
		return m.To == "ana@correo.co" && len(m.Attachments) == 1 && m.Attachments[0].FileName == "comprobante-000009.pdf"
	})).Return(nil).Once()

	result, err := d.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Sent)

	for _, e := range []*models.OutboxEvent{room, reserved, completed} {
		got := reload(t, db, e.ID)
		assert.Equal(t, models.OutboxStatusSent, got.Status)
		assert.Equal(t, 1, got.Attempts)
	}
	pub.AssertExpectations(t)
	smsSender.AssertExpectations(t)
	mail.AssertExpectations(t)
	receipts.AssertExpectations(t)

	// 已投递的事件不会再次处理
	result, err = d.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, *result)
}

func TestDispatchPending_SkipsWithoutRecipient(t *testing.T) {
	smsSender := &mockSMS{}
	d, db := newDispatcher(t, Channels{SMS: smsSender})

	noPhone := enqueue(t, db, models.TopicStayReserved, models.JSON{"stay_id": 1, "order_number": "#000001"})
	noBoard := enqueue(t, db, models.TopicRoomStatusChanged, models.JSON{"room_id": 1, "number": "101", "status": "Ocupado"})

	result, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, models.OutboxStatusSent, reload(t, db, noPhone.ID).Status)
	assert.Equal(t, models.OutboxStatusSent, reload(t, db, noBoard.ID).Status)
	smsSender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchPending_RetriesThenFails(t *testing.T) {
	pub := &mockPublisher{}
	d, db := newDispatcher(t, Channels{Publisher: pub})
	ctx := context.Background()

	e := enqueue(t, db, models.TopicRoomStatusChanged, models.JSON{"room_id": 1, "number": "101", "status": "Ocupado"})
	pub.On("Publish", mock.Anything, "hotel/rooms/101/status", mock.Anything).Return(errors.New("broker down"))

	// 第 1 次失败：1 分钟后重试
	result, err := d.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Retried)
	got := reload(t, db, e.ID)
	assert.Equal(t, models.OutboxStatusPending, got.Status)
	assert.Equal(t, 1, got.Attempts)
	assert.True(t, got.NextAttemptAt.Equal(fixedNow.Add(time.Minute)))
	require.NotNil(t, got.LastError)
	assert.Equal(t, "broker down", *got.LastError)

	// 未到期不处理
	result, err = d.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{}, *result)

	// 第 2 次失败：间隔翻倍
	d.now = func() time.Time { return fixedNow.Add(2 * time.Minute) }
	result, err = d.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Retried)
	got = reload(t, db, e.ID)
	assert.True(t, got.NextAttemptAt.Equal(fixedNow.Add(4*time.Minute)))

	// 第 3 次失败：达到上限
	d.now = func() time.Time { return fixedNow.Add(10 * time.Minute) }
	result, err = d.DispatchPending(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	got = reload(t, db, e.ID)
	assert.Equal(t, models.OutboxStatusFailed, got.Status)
	assert.Equal(t, 3, got.Attempts)
}

func TestDispatchPending_UnknownTopic(t *testing.T) {
	d, db := newDispatcher(t, Channels{})
	e := enqueue(t, db, "guest.updated", models.JSON{})

	result, err := d.DispatchPending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, models.OutboxStatusFailed, reload(t, db, e.ID).Status)
}

func TestBackoff(t *testing.T) {
	d := &Dispatcher{cfg: Config{RetryBackoff: 30 * time.Second}}
	assert.Equal(t, 30*time.Second, d.Backoff(0))
	assert.Equal(t, 2*time.Minute, d.Backoff(2))
	assert.Equal(t, time.Hour, d.Backoff(20))
}
