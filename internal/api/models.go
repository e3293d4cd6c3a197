package api

import (
	"github.com/google/uuid"

	"github.com/anketahub/anketa-api/internal/domain"
	"github.com/anketahub/anketa-api/internal/query"
)

// RegisterRequest represents the payload for user registration.
// Format rules for email, username and password are enforced again in the
// auth service; the validator tags here only reject obviously bad payloads.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=8,max=20"`
	Password string `json:"password" validate:"required,min=8,max=20"`
}

// ApproveRegisterRequest carries the session ID issued at registration and
// the confirmation code that completes it.
type ApproveRegisterRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Code      string `json:"code" validate:"required,len=6,numeric"`
}

// LoginRequest represents the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RecoveryRequest starts a password recovery session for the given email.
type RecoveryRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ApproveRecoveryRequest carries the session ID issued at recovery start and
// the confirmation code for it.
type ApproveRecoveryRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Code      string `json:"code" validate:"required,len=6,numeric"`
}

// UpdatePasswordRequest sets the new password on an approved recovery
// session.
type UpdatePasswordRequest struct {
	SessionID string `json:"session_id" validate:"required,uuid"`
	Password  string `json:"password" validate:"required,min=8,max=20"`
}

// AuthResponse is returned by endpoints that establish a session. The
// refresh token travels in an HTTP-only cookie, never in the body.
type AuthResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	AccessToken string    `json:"access_token"`
}

// MessageResponse is a minimal acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionResponse acknowledges the start of a signup or recovery flow and
// hands the client the session ID the follow-up calls must carry.
type SessionResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// CreateListingRequest represents the payload for publishing a listing.
type CreateListingRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Telegram string `json:"telegram"`
	WhatsApp string `json:"whatsapp"`

	Preferences []string       `json:"preferences"`
	FromAge     int            `json:"from_age" validate:"required,gte=18,lte=100"`
	BeforeAge   int            `json:"before_age" validate:"required,gte=18,lte=100,gtefield=FromAge"`
	City        domain.City    `json:"city" validate:"required"`
	Section     domain.Section `json:"section" validate:"required,oneof=prostitutes elite premium individual bdsm"`
	Photos      []string       `json:"photos"`
	Videos      []string       `json:"videos"`
	Tags        []string       `json:"tags"`

	Departure      string   `json:"departure"`
	DepartureTypes []string `json:"departure_types"`

	Cost1hAppart    float64 `json:"cost_1h_appart" validate:"gte=0"`
	Cost2hAppart    float64 `json:"cost_2h_appart" validate:"gte=0"`
	CostNightAppart float64 `json:"cost_night_appart" validate:"gte=0"`
	Cost1hArrive    float64 `json:"cost_1h_arrive" validate:"gte=0"`
	Cost2hArrive    float64 `json:"cost_2h_arrive" validate:"gte=0"`
	CostNightArrive float64 `json:"cost_night_arrive" validate:"gte=0"`
}

// toDomain converts the request into a listing entity. Identity, status and
// counters are assigned by the listing service.
func (req CreateListingRequest) toDomain() *domain.Listing {
	return &domain.Listing{
		Phone:           req.Phone,
		Telegram:        req.Telegram,
		WhatsApp:        req.WhatsApp,
		Preferences:     req.Preferences,
		FromAge:         req.FromAge,
		BeforeAge:       req.BeforeAge,
		City:            req.City,
		Section:         req.Section,
		Photos:          req.Photos,
		Videos:          req.Videos,
		Tags:            req.Tags,
		Departure:       req.Departure,
		DepartureTypes:  req.DepartureTypes,
		Cost1hAppart:    req.Cost1hAppart,
		Cost2hAppart:    req.Cost2hAppart,
		CostNightAppart: req.CostNightAppart,
		Cost1hArrive:    req.Cost1hArrive,
		Cost2hArrive:    req.Cost2hArrive,
		CostNightArrive: req.CostNightArrive,
	}
}

// ListingFilterRequest represents the payload for the listing search
// endpoint. Absent fields mean "don't filter"; the status field is only
// honored for admin callers.
type ListingFilterRequest struct {
	Status domain.ListingStatus `json:"status" validate:"omitempty,oneof=open pending disabled banned"`

	City           domain.City    `json:"city"`
	Section        domain.Section `json:"section" validate:"omitempty,oneof=prostitutes elite premium individual bdsm"`
	Tags           []string       `json:"tags"`
	Departure      string         `json:"departure"`
	DepartureTypes []string       `json:"departure_types"`

	FromAge   *int `json:"from_age" validate:"omitempty,gte=18,lte=100"`
	BeforeAge *int `json:"before_age" validate:"omitempty,gte=18,lte=100"`

	Cost1hAppart    *query.Range `json:"cost_1h_appart"`
	Cost2hAppart    *query.Range `json:"cost_2h_appart"`
	CostNightAppart *query.Range `json:"cost_night_appart"`
	Cost1hArrive    *query.Range `json:"cost_1h_arrive"`
	Cost2hArrive    *query.Range `json:"cost_2h_arrive"`
	CostNightArrive *query.Range `json:"cost_night_arrive"`

	Age          *query.Range `json:"age"`
	Height       *query.Range `json:"height"`
	Weight       *query.Range `json:"weight"`
	Breast       *query.Range `json:"breast"`
	ShoeSize     *query.Range `json:"shoe_size"`
	ClothingSize *query.Range `json:"clothing_size"`

	Appearance      string `json:"appearance"`
	Nationality     string `json:"nationality"`
	BodyType        string `json:"body_type"`
	HairColor       string `json:"hair_color"`
	IntimateHaircut string `json:"intimate_haircut"`
	BodyArt         string `json:"body_art"`

	Sort  query.SortKey `json:"sort" validate:"omitempty,oneof=score new price priceDesc"`
	Limit int           `json:"limit" validate:"omitempty,gte=1,lte=100"`
	Page  int           `json:"page" validate:"omitempty,gte=1"`
}

// toFilter converts the request into the query engine's filter type.
func (req ListingFilterRequest) toFilter() query.ListingFilter {
	return query.ListingFilter{
		Status:          req.Status,
		City:            req.City,
		Section:         req.Section,
		Tags:            req.Tags,
		Departure:       req.Departure,
		DepartureTypes:  req.DepartureTypes,
		FromAge:         req.FromAge,
		BeforeAge:       req.BeforeAge,
		Cost1hAppart:    req.Cost1hAppart,
		Cost2hAppart:    req.Cost2hAppart,
		CostNightAppart: req.CostNightAppart,
		Cost1hArrive:    req.Cost1hArrive,
		Cost2hArrive:    req.Cost2hArrive,
		CostNightArrive: req.CostNightArrive,
		Age:             req.Age,
		Height:          req.Height,
		Weight:          req.Weight,
		Breast:          req.Breast,
		ShoeSize:        req.ShoeSize,
		ClothingSize:    req.ClothingSize,
		Appearance:      req.Appearance,
		Nationality:     req.Nationality,
		BodyType:        req.BodyType,
		HairColor:       req.HairColor,
		IntimateHaircut: req.IntimateHaircut,
		BodyArt:         req.BodyArt,
		Sort:            req.Sort,
		Limit:           req.Limit,
		Page:            req.Page,
	}
}

// ListingPageResponse is one page of query engine results.
type ListingPageResponse struct {
	Data  []*domain.Listing `json:"data"`
	Total int               `json:"total"`
}

// ContactResponse carries a single revealed contact value.
type ContactResponse struct {
	Contact string `json:"contact"`
}
