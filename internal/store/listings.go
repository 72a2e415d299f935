package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rcmp123/backend/internal/models"
)

// ListingStore holds listing records and their sale state.
type ListingStore struct {
	db *sql.DB
}

func NewListingStore(db *sql.DB) *ListingStore {
	return &ListingStore{db: db}
}

// Create inserts a new listing in the LISTED state and returns its ID.
func (s *ListingStore) Create(ctx context.Context, l *models.Listing) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO listings (title, description, price, seller_id, image_path, sold, created_at)
		 VALUES ($1, $2, $3, $4, $5, FALSE, NOW()) RETURNING id`,
		l.Title, l.Description, l.Price, l.SellerID, l.ImagePath).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create listing: %w", err)
	}
	return id, nil
}

// GetByID fetches a single listing.
func (s *ListingStore) GetByID(ctx context.Context, id int) (*models.Listing, error) {
	var l models.Listing
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, price, seller_id, image_path, sold, created_at, sold_at
		 FROM listings WHERE id = $1`,
		id).Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.SellerID, &l.ImagePath, &l.Sold, &l.CreatedAt, &l.SoldAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	return &l, nil
}

// ListAll returns all listings with the seller username resolved.
func (s *ListingStore) ListAll(ctx context.Context) ([]models.ListingPublic, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT l.id, l.title, l.description, l.price, a.username, l.image_path, l.sold
		 FROM listings l
		 JOIN accounts a ON a.id = l.seller_id
		 ORDER BY l.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	listings := []models.ListingPublic{}
	for rows.Next() {
		var l models.ListingPublic
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.Price, &l.SellerUsername, &l.ImageURL, &l.Sold); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// MarkSold applies the LISTED -> SOLD transition as a compare-and-set on the
// sold flag. It returns changed=true when this call performed the transition,
// changed=false when the listing was already sold (idempotent no-op), and
// ErrNotFound when no such listing exists. There is no reverse transition.
func (s *ListingStore) MarkSold(ctx context.Context, id int) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE listings SET sold = TRUE, sold_at = NOW() WHERE id = $1 AND sold = FALSE`,
		id)
	if err != nil {
		return false, fmt.Errorf("failed to mark listing sold: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows > 0 {
		return true, nil
	}

	// CAS matched nothing: either the listing is already sold or it is gone.
	var sold bool
	err = s.db.QueryRowContext(ctx, `SELECT sold FROM listings WHERE id = $1`, id).Scan(&sold)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to check listing state: %w", err)
	}
	return false, nil
}
