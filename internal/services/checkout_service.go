package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/rcmp123/backend/internal/config"
	"github.com/rcmp123/backend/internal/payments"
	"github.com/rcmp123/backend/internal/store"
)

var (
	// ErrListingNotFound is returned when the checkout target does not exist.
	ErrListingNotFound = errors.New("listing not found")
	// ErrAlreadySold rejects checkout against a sold listing.
	ErrAlreadySold = errors.New("listing already sold")
	// ErrSellerNotPayable rejects fee-split checkout when the seller carries
	// no payout account reference.
	ErrSellerNotPayable = errors.New("seller not connected for payouts")
)

// CheckoutService composes a listing and a buyer into a checkout session on
// the payment processor. It never writes local state: the sold transition
// happens only through the webhook, so repeated checkout calls just create
// independent intents.
type CheckoutService struct {
	listings *store.ListingStore
	accounts *store.AccountStore
	client   *payments.Client
	cfg      *config.CheckoutConfig
}

func NewCheckoutService(listings *store.ListingStore, accounts *store.AccountStore, client *payments.Client, cfg *config.CheckoutConfig) *CheckoutService {
	return &CheckoutService{
		listings: listings,
		accounts: accounts,
		client:   client,
		cfg:      cfg,
	}
}

// CreateCheckout validates the listing, freezes the amount at the listing's
// current price and returns the processor's redirect URL.
func (s *CheckoutService) CreateCheckout(ctx context.Context, listingID int, buyerEmail string) (string, error) {
	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrListingNotFound
		}
		return "", err
	}
	if listing.Sold {
		return "", ErrAlreadySold
	}

	req := &payments.CheckoutRequest{
		AmountCents:     listing.AmountMinorUnits(),
		Currency:        s.cfg.Currency,
		ItemName:        listing.Title,
		ItemDescription: listing.Description,
		BuyerEmail:      buyerEmail,
		ListingID:       listing.ID,
		SuccessURL:      strings.ReplaceAll(s.cfg.SuccessURL, "{LISTING_ID}", fmt.Sprintf("%d", listing.ID)),
		CancelURL:       s.cfg.CancelURL,
	}

	if s.cfg.FeeSplitEnabled {
		seller, err := s.accounts.GetByID(ctx, listing.SellerID)
		if err != nil {
			return "", err
		}
		if !seller.Payable() {
			return "", ErrSellerNotPayable
		}
		req.ApplicationFeeCents = s.cfg.PlatformFeeCents
		req.DestinationAccount = *seller.PayoutAccountID
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	session, err := s.client.CreateCheckoutSession(ctx, req)
	if err != nil {
		return "", err
	}

	log.Printf("[CHECKOUT] Session %s created for listing %d, amount %d %s",
		session.ID, listing.ID, req.AmountCents, req.Currency)
	return session.URL, nil
}
