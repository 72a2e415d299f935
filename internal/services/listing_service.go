package services

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rcmp123/backend/internal/models"
	"github.com/rcmp123/backend/internal/store"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/viper"
)

const maxImageBytes = 10 << 20 // 10 MB

// ListingService handles listing creation and enumeration. Everything here is
// plain field mapping; the sale state machine lives in the listing store.
type ListingService struct {
	listings  *store.ListingStore
	accounts  *store.AccountStore
	imagesDir string
	validator *ValidationHelper
}

func NewListingService(listings *store.ListingStore, accounts *store.AccountStore) *ListingService {
	viper.SetDefault("images.dir", "images")
	dir := viper.GetString("images.dir")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[LISTING] Failed to create images dir %s: %v", dir, err)
	}
	return &ListingService{
		listings:  listings,
		accounts:  accounts,
		imagesDir: dir,
		validator: NewValidationHelper(),
	}
}

// CreateListing creates a listing with an uploaded image
// @Summary Create a listing
// @Tags listings
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param price formData number true "Price in dollars"
// @Param image formData file true "Item image"
// @Success 201 {object} map[string]int "Listing created"
// @Failure 400 {object} ErrorResponse "Invalid request"
// @Router /listings [post]
func (s *ListingService) CreateListing(w http.ResponseWriter, r *http.Request) {
	sellerID, ok := r.Context().Value("userID").(int)
	if !ok {
		SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		SendErrorResponse(w, "Invalid multipart form", http.StatusBadRequest, nil)
		return
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil || price <= 0 {
		SendErrorResponse(w, "Price must be a positive number", http.StatusBadRequest, nil)
		return
	}

	title := r.FormValue("title")
	description := r.FormValue("description")
	if title == "" || description == "" {
		SendErrorResponse(w, "Title and description are required", http.StatusBadRequest, nil)
		return
	}

	if _, err := s.accounts.GetByID(r.Context(), sellerID); err != nil {
		SendErrorResponse(w, "Invalid seller", http.StatusBadRequest, nil)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		SendErrorResponse(w, "Image is required", http.StatusBadRequest, nil)
		return
	}
	defer file.Close()

	filename := fmt.Sprintf("%s_%s", uuid.New().String(), filepath.Base(header.Filename))
	diskPath := filepath.Join(s.imagesDir, filename)
	out, err := os.Create(diskPath)
	if err != nil {
		log.Printf("[LISTING] Failed to store image %s: %v", diskPath, err)
		SendErrorResponse(w, "Failed to store image", http.StatusInternalServerError, nil)
		return
	}
	defer out.Close()
	if _, err := io.Copy(out, file); err != nil {
		log.Printf("[LISTING] Failed to write image %s: %v", diskPath, err)
		SendErrorResponse(w, "Failed to store image", http.StatusInternalServerError, nil)
		return
	}

	listing := &models.Listing{
		Title:       title,
		Description: description,
		Price:       price,
		SellerID:    sellerID,
		ImagePath:   "/images/" + filename,
	}
	id, err := s.listings.Create(r.Context(), listing)
	if err != nil {
		log.Printf("[LISTING] Creation failed for seller %d: %v", sellerID, err)
		SendErrorResponse(w, "Failed to create listing", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[LISTING] Listing %d created by seller %d", id, sellerID)
	SendJSON(w, http.StatusCreated, map[string]int{"listing_id": id})
}

// GetListings returns all listings
// @Summary List all listings
// @Tags listings
// @Produce json
// @Success 200 {array} models.ListingPublic
// @Router /listings [get]
func (s *ListingService) GetListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.listings.ListAll(r.Context())
	if err != nil {
		log.Printf("[LISTING] Enumeration failed: %v", err)
		SendErrorResponse(w, "Failed to fetch listings", http.StatusInternalServerError, nil)
		return
	}
	SendJSON(w, http.StatusOK, listings)
}

// GetListingQR renders a share QR code pointing at the listing page
// @Summary Listing share QR code
// @Tags listings
// @Produce png
// @Param listingId path int true "Listing ID"
// @Success 200 {file} binary "PNG QR code"
// @Failure 404 {object} ErrorResponse "Listing not found"
// @Router /listings/{listingId}/qr [get]
func (s *ListingService) GetListingQR(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "listingId"))
	if err != nil {
		SendErrorResponse(w, "Invalid listing id", http.StatusBadRequest, nil)
		return
	}

	if _, err := s.listings.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			SendErrorResponse(w, "Listing not found", http.StatusNotFound, nil)
			return
		}
		SendErrorResponse(w, "Failed to fetch listing", http.StatusInternalServerError, nil)
		return
	}

	shareURL := fmt.Sprintf("%s/listings/%d", viper.GetString("frontend.base_url"), id)
	png, err := qrcode.Encode(shareURL, qrcode.Medium, 256)
	if err != nil {
		log.Printf("[LISTING] QR generation failed for listing %d: %v", id, err)
		SendErrorResponse(w, "Failed to generate QR code", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}
