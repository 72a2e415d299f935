package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rcmp123/backend/internal/payments"
	"github.com/rcmp123/backend/internal/store"
)

// dedupTTL keeps processed event IDs around long enough to absorb processor
// redelivery bursts.
const dedupTTL = 24 * time.Hour

// FulfillmentService applies the sold transition when the payment processor
// confirms a completed checkout. This is the single trust-boundary crossing
// in the system: the notification arrives server-to-server from an untrusted
// origin and must be cryptographically gated before any business logic runs.
type FulfillmentService struct {
	listings      *store.ListingStore
	redis         *redis.Client
	webhookSecret []byte
	tolerance     time.Duration
	now           func() time.Time
}

func NewFulfillmentService(listings *store.ListingStore, redisClient *redis.Client, webhookSecret []byte) *FulfillmentService {
	return &FulfillmentService{
		listings:      listings,
		redis:         redisClient,
		webhookSecret: webhookSecret,
		tolerance:     payments.DefaultTolerance,
		now:           time.Now,
	}
}

// HandleNotification verifies and applies a webhook delivery.
//
// The signature is verified over the raw body before the body is parsed.
// After verification the delivery is always acknowledged: unknown event
// kinds, missing listings and redeliveries all succeed, so the processor
// never retries forever.
func (s *FulfillmentService) HandleNotification(ctx context.Context, rawBody []byte, signatureHeader string) error {
	if err := payments.VerifySignature(s.webhookSecret, rawBody, signatureHeader, s.tolerance, s.now()); err != nil {
		log.Printf("[WEBHOOK] Signature verification failed: %v", err)
		return payments.ErrInvalidSignature
	}

	var event payments.Event
	if err := json.Unmarshal(rawBody, &event); err != nil {
		// The body authenticated but doesn't parse. Acknowledge it anyway;
		// redelivering the same bytes can never succeed.
		log.Printf("[WEBHOOK] Acknowledging malformed event body: %v", err)
		return nil
	}

	if event.Type != payments.EventCheckoutCompleted {
		log.Printf("[WEBHOOK] Ignoring event %s of type %s", event.ID, event.Type)
		return nil
	}

	if s.alreadyProcessed(ctx, event.ID) {
		log.Printf("[WEBHOOK] Event %s already processed, acknowledging", event.ID)
		return nil
	}

	listingID, err := strconv.Atoi(event.Data.Object.Metadata["listing_id"])
	if err != nil {
		log.Printf("[WEBHOOK] Event %s carries no usable listing_id metadata, acknowledging", event.ID)
		return nil
	}

	changed, err := s.listings.MarkSold(ctx, listingID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		// Apply failed after the dedup key was claimed; release it so the
		// redelivery is not short-circuited past the lost transition.
		s.forgetEvent(ctx, event.ID)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Listing deleted or never existed locally. Acknowledge so the
			// processor stops redelivering.
			log.Printf("[WEBHOOK] Listing %d not found for event %s, acknowledging", listingID, event.ID)
			return nil
		}
		return err
	}

	if changed {
		log.Printf("[WEBHOOK] Listing %d marked sold by event %s", listingID, event.ID)
	} else {
		log.Printf("[WEBHOOK] Listing %d already sold, event %s is a no-op", listingID, event.ID)
	}
	return nil
}

// alreadyProcessed records the event ID in Redis and reports whether it was
// seen before. Best effort only: the CAS in MarkSold keeps the transition
// idempotent when Redis is down.
func (s *FulfillmentService) alreadyProcessed(ctx context.Context, eventID string) bool {
	if s.redis == nil || eventID == "" {
		return false
	}
	key := fmt.Sprintf("webhook:event:%s", eventID)
	ok, err := s.redis.SetNX(ctx, key, "1", dedupTTL).Result()
	if err != nil {
		log.Printf("[WEBHOOK] Event dedup unavailable: %v", err)
		return false
	}
	return !ok
}

func (s *FulfillmentService) forgetEvent(ctx context.Context, eventID string) {
	if s.redis == nil || eventID == "" {
		return
	}
	s.redis.Del(ctx, fmt.Sprintf("webhook:event:%s", eventID))
}
