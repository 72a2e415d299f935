package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v8"
	"github.com/rcmp123/backend/internal/payments"
	"github.com/rcmp123/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testWebhookSecret = []byte("whsec_test")

func completedEventBody(eventID string, listingID int) []byte {
	return []byte(fmt.Sprintf(
		`{"id":"%s","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"listing_id":"%d"}}}}`,
		eventID, listingID))
}

func signedHeader(body []byte) string {
	return payments.SignPayload(testWebhookSecret, body, time.Now())
}

func TestFulfillmentService_HandleNotification(t *testing.T) {
	t.Run("valid event marks listing sold", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewFulfillmentService(store.NewListingStore(db), nil, testWebhookSecret)

		mock.ExpectExec("UPDATE listings SET sold = TRUE").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		body := completedEventBody("evt_1", 7)
		err = svc.HandleNotification(context.Background(), body, signedHeader(body))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("redelivery acknowledges without a second state change", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewFulfillmentService(store.NewListingStore(db), nil, testWebhookSecret)

		// First delivery performs the transition.
		mock.ExpectExec("UPDATE listings SET sold = TRUE").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		// Second delivery: CAS matches nothing, listing found already sold.
		mock.ExpectExec("UPDATE listings SET sold = TRUE").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT sold FROM listings").
			WithArgs(7).
			WillReturnRows(sqlmock.NewRows([]string{"sold"}).AddRow(true))

		body := completedEventBody("evt_1", 7)
		assert.NoError(t, svc.HandleNotification(context.Background(), body, signedHeader(body)))
		assert.NoError(t, svc.HandleNotification(context.Background(), body, signedHeader(body)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid signature rejected before any listing lookup", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewFulfillmentService(store.NewListingStore(db), nil, testWebhookSecret)

		body := completedEventBody("evt_1", 7)
		// No sqlmock expectations: any DB access fails the test.
		err = svc.HandleNotification(context.Background(), body, "t=1,v1=deadbeef")
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)

		err = svc.HandleNotification(context.Background(), body, "")
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)

		// Valid header over different bytes.
		other := signedHeader(completedEventBody("evt_1", 8))
		err = svc.HandleNotification(context.Background(), body, other)
		assert.ErrorIs(t, err, payments.ErrInvalidSignature)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other event kinds are acknowledged and ignored", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewFulfillmentService(store.NewListingStore(db), nil, testWebhookSecret)

		body := []byte(`{"id":"evt_2","type":"payment_intent.created","data":{"object":{"id":"pi_1","metadata":{"listing_id":"7"}}}}`)
		err = svc.HandleNotification(context.Background(), body, signedHeader(body))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing listing is acknowledged without error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewFulfillmentService(store.NewListingStore(db), nil, testWebhookSecret)

		mock.ExpectExec("UPDATE listings SET sold = TRUE").
			WithArgs(404).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT sold FROM listings").
			WithArgs(404).
			WillReturnRows(sqlmock.NewRows([]string{"sold"}))

		body := completedEventBody("evt_3", 404)
		err = svc.HandleNotification(context.Background(), body, signedHeader(body))
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing metadata is acknowledged", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewFulfillmentService(store.NewListingStore(db), nil, testWebhookSecret)

		body := []byte(`{"id":"evt_4","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{}}}}`)
		assert.NoError(t, svc.HandleNotification(context.Background(), body, signedHeader(body)))
	})

	t.Run("authenticated but malformed body is acknowledged", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		svc := NewFulfillmentService(store.NewListingStore(db), nil, testWebhookSecret)

		body := []byte(`not json at all`)
		assert.NoError(t, svc.HandleNotification(context.Background(), body, signedHeader(body)))
	})

	t.Run("redis dedup short-circuits redelivery", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		redisClient, redisMock := redismock.NewClientMock()
		svc := NewFulfillmentService(store.NewListingStore(db), redisClient, testWebhookSecret)

		redisMock.ExpectSetNX("webhook:event:evt_5", "1", dedupTTL).SetVal(true)
		mock.ExpectExec("UPDATE listings SET sold = TRUE").
			WithArgs(9).
			WillReturnResult(sqlmock.NewResult(0, 1))
		redisMock.ExpectSetNX("webhook:event:evt_5", "1", dedupTTL).SetVal(false)

		body := completedEventBody("evt_5", 9)
		assert.NoError(t, svc.HandleNotification(context.Background(), body, signedHeader(body)))
		assert.NoError(t, svc.HandleNotification(context.Background(), body, signedHeader(body)))
		assert.NoError(t, mock.ExpectationsWereMet())
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})
}
