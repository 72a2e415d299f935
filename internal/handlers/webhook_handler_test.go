package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rcmp123/backend/internal/payments"
	"github.com/rcmp123/backend/internal/services"
	"github.com/rcmp123/backend/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookHandler_HandleWebhook(t *testing.T) {
	secret := []byte("whsec_test")
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1","metadata":{"listing_id":"7"}}}}`)

	t.Run("valid delivery acknowledged", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE listings SET sold = TRUE").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))

		handler := NewWebhookHandler(services.NewFulfillmentService(store.NewListingStore(db), nil, secret))

		r := httptest.NewRequest("POST", "/payments/webhook", bytes.NewBuffer(body))
		r.Header.Set(SignatureHeader, payments.SignPayload(secret, body, time.Now()))
		w := httptest.NewRecorder()

		handler.HandleWebhook(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "success")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bad signature rejected", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		handler := NewWebhookHandler(services.NewFulfillmentService(store.NewListingStore(db), nil, secret))

		r := httptest.NewRequest("POST", "/payments/webhook", bytes.NewBuffer(body))
		r.Header.Set(SignatureHeader, "t=1,v1=deadbeef")
		w := httptest.NewRecorder()

		handler.HandleWebhook(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing signature header rejected", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		handler := NewWebhookHandler(services.NewFulfillmentService(store.NewListingStore(db), nil, secret))

		r := httptest.NewRequest("POST", "/payments/webhook", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.HandleWebhook(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
