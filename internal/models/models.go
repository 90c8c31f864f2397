package models

import (
	"math"
	"time"
)

type User struct {
	ID           int        `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	IsAdmin      bool       `json:"is_admin" db:"is_admin"`
	IsActivated  bool       `json:"is_activated" db:"is_activated"`
	LastSeen     *time.Time `json:"last_seen,omitempty" db:"last_seen"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

type Session struct {
	ID        string    `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type CSRFToken struct {
	Token     string    `json:"token" db:"token"`
	UserID    int       `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type ActivationToken struct {
	Token     string    `json:"token" db:"token"`
	UserID    int       `json:"user_id" db:"user_id"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Category is a shared lookup. Deletion is blocked while garments reference it.
type Category struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Color struct {
	ID      int    `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	HexCode string `json:"hex_code" db:"hex_code"`
}

// Size kinds.
const (
	SizeKindStandard = "standard"
	SizeKindNumeric  = "numerique"
	SizeKindOther    = "autre"
)

type Size struct {
	ID        int    `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	Kind      string `json:"kind" db:"kind"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

// Garment enums. The French codes are the persisted values.
const (
	GenderMen    = "homme"
	GenderWomen  = "femme"
	GenderUnisex = "unisexe"
	GenderKids   = "enfant"

	SeasonSpring = "printemps"
	SeasonSummer = "ete"
	SeasonAutumn = "automne"
	SeasonWinter = "hiver"
	SeasonAll    = "toute_saison"

	ConditionNew       = "neuf"
	ConditionExcellent = "excellent"
	ConditionGood      = "bon"
	ConditionWorn      = "usage"
	ConditionToRepair  = "reparer"
)

type Garment struct {
	ID            int        `json:"id" db:"id"`
	UserID        int        `json:"user_id" db:"user_id"`
	Name          string     `json:"name" db:"name"`
	Description   string     `json:"description" db:"description"`
	CategoryID    int        `json:"category_id" db:"category_id"`
	ColorID       *int       `json:"color_id,omitempty" db:"color_id"`
	SizeID        *int       `json:"size_id,omitempty" db:"size_id"`
	Brand         string     `json:"brand" db:"brand"`
	Material      string     `json:"material" db:"material"`
	Gender        string     `json:"gender" db:"gender"`
	Season        string     `json:"season" db:"season"`
	Condition     string     `json:"condition" db:"condition"`
	PurchasePrice *float64   `json:"purchase_price,omitempty" db:"purchase_price"`
	PurchaseDate  *time.Time `json:"purchase_date,omitempty" db:"purchase_date"`
	PurchasePlace string     `json:"purchase_place" db:"purchase_place"`
	WearCount     int        `json:"wear_count" db:"wear_count"`
	LastWorn      *time.Time `json:"last_worn,omitempty" db:"last_worn"`
	IsFavorite    bool       `json:"is_favorite" db:"is_favorite"`
	NeedsWash     bool       `json:"needs_wash" db:"needs_wash"`
	NeedsIron     bool       `json:"needs_iron" db:"needs_iron"`
	NeedsRepair   bool       `json:"needs_repair" db:"needs_repair"`
	IsLoaned      bool       `json:"is_loaned" db:"is_loaned"`
	LoanedTo      string     `json:"loaned_to" db:"loaned_to"`
	Location      string     `json:"location" db:"location"`
	Notes         string     `json:"notes" db:"notes"`
	ImagePath     string     `json:"image_path" db:"image_path"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
	Category      *Category  `json:"category,omitempty"`
	Color         *Color     `json:"color,omitempty"`
	Size          *Size      `json:"size,omitempty"`
}

// CostPerWear returns purchase price divided by wear count. It is undefined
// (nil) when the garment was never worn or has no recorded price.
func (g *Garment) CostPerWear() *float64 {
	if g.PurchasePrice == nil || g.WearCount == 0 {
		return nil
	}
	cpw := *g.PurchasePrice / float64(g.WearCount)
	return &cpw
}

// RarelyWorn reports whether the garment was worn fewer than three times.
func (g *Garment) RarelyWorn() bool {
	return g.WearCount < 3
}

// NeedsCare reports whether any maintenance flag is set.
func (g *Garment) NeedsCare() bool {
	return g.NeedsWash || g.NeedsIron || g.NeedsRepair
}

const (
	OccasionCasual   = "decontracte"
	OccasionWork     = "travail"
	OccasionSport    = "sport"
	OccasionEvening  = "soiree"
	OccasionCeremony = "ceremonie"
)

type Outfit struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Description string     `json:"description" db:"description"`
	Occasion    string     `json:"occasion" db:"occasion"`
	Season      string     `json:"season" db:"season"`
	IsFavorite  bool       `json:"is_favorite" db:"is_favorite"`
	WearCount   int        `json:"wear_count" db:"wear_count"`
	LastWorn    *time.Time `json:"last_worn,omitempty" db:"last_worn"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	Garments    []Garment  `json:"garments,omitempty"`
}

// Suitcase enums.
const (
	TripWeekend  = "weekend"
	TripWeek     = "semaine"
	TripLong     = "long"
	TripBusiness = "professionnel"
	TripHoliday  = "vacances"

	ClimateHot      = "chaud"
	ClimateMild     = "tempere"
	ClimateCold     = "froid"
	ClimateTropical = "tropical"
	ClimateMountain = "montagne"
	ClimateBeach    = "plage"

	SuitcasePreparing = "preparation"
	SuitcaseReady     = "prete"
	SuitcaseTraveling = "en_cours"
	SuitcaseDone      = "terminee"
)

type Suitcase struct {
	ID            string        `json:"id" db:"id"`
	UserID        int           `json:"user_id" db:"user_id"`
	Name          string        `json:"name" db:"name"`
	Destination   string        `json:"destination" db:"destination"`
	TripType      string        `json:"trip_type" db:"trip_type"`
	DepartureDate time.Time     `json:"departure_date" db:"departure_date"`
	ReturnDate    time.Time     `json:"return_date" db:"return_date"`
	Climate       string        `json:"climate" db:"climate"`
	Status        string        `json:"status" db:"status"`
	ExtraItems    string        `json:"extra_items" db:"extra_items"`
	MaxWeightKg   *float64      `json:"max_weight_kg,omitempty" db:"max_weight_kg"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
	Items         []PackingItem `json:"items,omitempty"`
}

// DurationDays returns the trip length in days, both endpoints included.
func (s *Suitcase) DurationDays() int {
	departure := truncateToDay(s.DepartureDate)
	ret := truncateToDay(s.ReturnDate)
	return int(ret.Sub(departure).Hours()/24) + 1
}

func (s *Suitcase) IsPast() bool {
	return truncateToDay(s.ReturnDate).Before(truncateToDay(time.Now()))
}

func (s *Suitcase) IsOngoing() bool {
	today := truncateToDay(time.Now())
	return !truncateToDay(s.DepartureDate).After(today) && !truncateToDay(s.ReturnDate).Before(today)
}

func (s *Suitcase) IsUpcoming() bool {
	return truncateToDay(s.DepartureDate).After(truncateToDay(time.Now()))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Packing categories for the suitcase checklist.
const (
	PackingClothes      = "vetements"
	PackingShoes        = "chaussures"
	PackingUnderwear    = "sous_vetements"
	PackingAccessories  = "accessoires"
	PackingToiletries   = "toilette"
	PackingElectronics  = "electronique"
	PackingDocuments    = "documents"
	PackingHealth       = "sante"
	PackingMisc         = "autre"
	DefaultItemWeightG  = 200
)

type PackingItem struct {
	ID          int       `json:"id" db:"id"`
	SuitcaseID  string    `json:"suitcase_id" db:"suitcase_id"`
	GarmentID   int       `json:"garment_id" db:"garment_id"`
	IsPacked    bool      `json:"is_packed" db:"is_packed"`
	Category    string    `json:"category" db:"category"`
	WeightGrams int       `json:"weight_grams" db:"weight_grams"`
	SortOrder   int       `json:"sort_order" db:"sort_order"`
	Note        string    `json:"note" db:"note"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	Garment     *Garment  `json:"garment,omitempty"`
}

// PackingStats is the aggregate returned by the checklist toggle endpoint.
type PackingStats struct {
	Total      int     `json:"total"`
	Packed     int     `json:"packed"`
	Percentage int     `json:"percentage"`
	WeightKg   float64 `json:"weight_kg"`
}

// PackingPercentage rounds packed/total to a whole percentage, 0 when empty.
func PackingPercentage(packed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(packed) / float64(total) * 100))
}

type Message struct {
	ID                  int        `json:"id" db:"id"`
	SenderID            int        `json:"sender_id" db:"sender_id"`
	RecipientID         int        `json:"recipient_id" db:"recipient_id"`
	Subject             string     `json:"subject" db:"subject"`
	Body                string     `json:"body" db:"body"`
	IsRead              bool       `json:"is_read" db:"is_read"`
	ReadAt              *time.Time `json:"read_at,omitempty" db:"read_at"`
	ArchivedBySender    bool       `json:"archived_by_sender" db:"archived_by_sender"`
	ArchivedByRecipient bool       `json:"archived_by_recipient" db:"archived_by_recipient"`
	ReplyToID           *int       `json:"reply_to_id,omitempty" db:"reply_to_id"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	Sender              *User      `json:"sender,omitempty"`
	Recipient           *User      `json:"recipient,omitempty"`
}

const (
	FriendshipPending  = "pending"
	FriendshipAccepted = "accepted"
	FriendshipDeclined = "declined"
)

type Friendship struct {
	ID          int        `json:"id" db:"id"`
	RequesterID int        `json:"requester_id" db:"requester_id"`
	RecipientID int        `json:"recipient_id" db:"recipient_id"`
	Status      string     `json:"status" db:"status"`
	RequestedAt time.Time  `json:"requested_at" db:"requested_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty" db:"responded_at"`
	Requester   *User      `json:"requester,omitempty"`
	Recipient   *User      `json:"recipient,omitempty"`
}

const (
	ListingForSale   = "en_vente"
	ListingReserved  = "reservee"
	ListingSold      = "vendue"
	ListingWithdrawn = "retiree"
)

type Listing struct {
	ID                int        `json:"id" db:"id"`
	GarmentID         int        `json:"garment_id" db:"garment_id"`
	SellerID          int        `json:"seller_id" db:"seller_id"`
	Price             float64    `json:"price" db:"price"`
	Negotiable        bool       `json:"negotiable" db:"negotiable"`
	DeliveryAvailable bool       `json:"delivery_available" db:"delivery_available"`
	Description       string     `json:"description" db:"description"`
	Status            string     `json:"status" db:"status"`
	BuyerID           *int       `json:"buyer_id,omitempty" db:"buyer_id"`
	PublishedAt       time.Time  `json:"published_at" db:"published_at"`
	SoldAt            *time.Time `json:"sold_at,omitempty" db:"sold_at"`
	Garment           *Garment   `json:"garment,omitempty"`
	Seller            *User      `json:"seller,omitempty"`
}

type ListingFavorite struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	ListingID int       `json:"listing_id" db:"listing_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Listing   *Listing  `json:"listing,omitempty"`
}

const (
	TransactionOngoing   = "en_cours"
	TransactionDelivered = "livree"
	TransactionCancelled = "annulee"
)

type Transaction struct {
	ID             int        `json:"id" db:"id"`
	ListingID      int        `json:"listing_id" db:"listing_id"`
	BuyerID        int        `json:"buyer_id" db:"buyer_id"`
	SellerID       int        `json:"seller_id" db:"seller_id"`
	AgreedPrice    float64    `json:"agreed_price" db:"agreed_price"`
	DeliveryMethod string     `json:"delivery_method" db:"delivery_method"`
	Status         string     `json:"status" db:"status"`
	Notes          string     `json:"notes" db:"notes"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	Listing        *Listing   `json:"listing,omitempty"`
	Buyer          *User      `json:"buyer,omitempty"`
	Seller         *User      `json:"seller,omitempty"`
}

type SellerReview struct {
	ID            int       `json:"id" db:"id"`
	TransactionID int       `json:"transaction_id" db:"transaction_id"`
	ReviewerID    int       `json:"reviewer_id" db:"reviewer_id"`
	SellerID      int       `json:"seller_id" db:"seller_id"`
	Rating        int       `json:"rating" db:"rating"`
	Communication int       `json:"communication" db:"communication"`
	ItemAccuracy  int       `json:"item_accuracy" db:"item_accuracy"`
	Shipping      int       `json:"shipping" db:"shipping"`
	Value         int       `json:"value" db:"value"`
	Comment       string    `json:"comment" db:"comment"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	Reviewer      *User     `json:"reviewer,omitempty"`
}

const (
	EventWearOutfit  = "port_tenue"
	EventFitting     = "essayage"
	EventShopping    = "achat"
	EventMaintenance = "entretien"
	EventOther       = "autre"
)

type CalendarEvent struct {
	ID              int       `json:"id" db:"id"`
	UserID          int       `json:"user_id" db:"user_id"`
	Title           string    `json:"title" db:"title"`
	EventType       string    `json:"event_type" db:"event_type"`
	Date            time.Time `json:"date" db:"date"`
	StartTime       string    `json:"start_time" db:"start_time"`
	EndTime         string    `json:"end_time" db:"end_time"`
	AllDay          bool      `json:"all_day" db:"all_day"`
	OutfitID        *int      `json:"outfit_id,omitempty" db:"outfit_id"`
	Location        string    `json:"location" db:"location"`
	Reminder        bool      `json:"reminder" db:"reminder"`
	ReminderMinutes int       `json:"reminder_minutes" db:"reminder_minutes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	Outfit          *Outfit   `json:"outfit,omitempty"`
}

// SiteSettings is a singleton row. All reads and writes target id 1.
type SiteSettings struct {
	ID                   int       `json:"id" db:"id"`
	SiteName             string    `json:"site_name" db:"site_name"`
	SiteDescription      string    `json:"site_description" db:"site_description"`
	AdminEmail           string    `json:"admin_email" db:"admin_email"`
	RegistrationOpen     bool      `json:"registration_open" db:"registration_open"`
	RegistrationApproval bool      `json:"registration_approval" db:"registration_approval"`
	MessagesEnabled      bool      `json:"messages_enabled" db:"messages_enabled"`
	MarketplaceEnabled   bool      `json:"marketplace_enabled" db:"marketplace_enabled"`
	FriendshipsEnabled   bool      `json:"friendships_enabled" db:"friendships_enabled"`
	MaxGarmentsPerUser   int       `json:"max_garments_per_user" db:"max_garments_per_user"`
	MaxOutfitsPerUser    int       `json:"max_outfits_per_user" db:"max_outfits_per_user"`
	MaxSuitcasesPerUser  int       `json:"max_suitcases_per_user" db:"max_suitcases_per_user"`
	MaxImageMB           int       `json:"max_image_mb" db:"max_image_mb"`
	ModerationEnabled    bool      `json:"moderation_enabled" db:"moderation_enabled"`
	ModerateMessages     bool      `json:"moderate_messages" db:"moderate_messages"`
	ModerateListings     bool      `json:"moderate_listings" db:"moderate_listings"`
	MaintenanceMode      bool      `json:"maintenance_mode" db:"maintenance_mode"`
	MaintenanceMessage   string    `json:"maintenance_message" db:"maintenance_message"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

const (
	ReportPending  = "en_attente"
	ReportHandling = "en_cours"
	ReportResolved = "resolu"
	ReportRejected = "rejete"

	ActionSuspension = "suspension"
	ActionBan        = "bannissement"
	ActionLift       = "levee_sanction"
)

type ModerationReport struct {
	ID               int        `json:"id" db:"id"`
	ReporterID       int        `json:"reporter_id" db:"reporter_id"`
	ContentType      string     `json:"content_type" db:"content_type"`
	ObjectID         int        `json:"object_id" db:"object_id"`
	ReportedUserID   *int       `json:"reported_user_id,omitempty" db:"reported_user_id"`
	Reason           string     `json:"reason" db:"reason"`
	Description      string     `json:"description" db:"description"`
	Status           string     `json:"status" db:"status"`
	ModeratorID      *int       `json:"moderator_id,omitempty" db:"moderator_id"`
	ActionTaken      string     `json:"action_taken" db:"action_taken"`
	ModeratorComment string     `json:"moderator_comment" db:"moderator_comment"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	HandledAt        *time.Time `json:"handled_at,omitempty" db:"handled_at"`
	Reporter         *User      `json:"reporter,omitempty"`
	ReportedUser     *User      `json:"reported_user,omitempty"`
}

type ModerationAction struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	ModeratorID int        `json:"moderator_id" db:"moderator_id"`
	ActionType  string     `json:"action_type" db:"action_type"`
	Reason      string     `json:"reason" db:"reason"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty" db:"ends_at"`
	ReportID    *int       `json:"report_id,omitempty" db:"report_id"`
	User        *User      `json:"user,omitempty"`
}
