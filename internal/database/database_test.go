package database

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"garderobe/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

const testSessionDuration = 7 * 24 * time.Hour

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatal("Failed to open test database:", err)
	}

	if err := Migrate(db); err != nil {
		t.Fatal("Failed to run migrations:", err)
	}

	return db
}

func createTestUser(t *testing.T, db *sql.DB, username, email string) *models.User {
	t.Helper()
	user, err := CreateUser(db, username, email, "password123")
	if err != nil {
		t.Fatal("Failed to create user:", err)
	}
	return user
}

func createTestGarment(t *testing.T, db *sql.DB, userID int, name string) *models.Garment {
	t.Helper()

	categories, err := GetCategories(db)
	if err != nil || len(categories) == 0 {
		t.Fatal("Expected seeded categories")
	}

	garment, err := CreateGarment(db, userID, models.Garment{
		Name:       name,
		CategoryID: categories[0].ID,
		Gender:     models.GenderUnisex,
		Season:     models.SeasonAll,
		Condition:  models.ConditionGood,
	})
	if err != nil {
		t.Fatal("Failed to create garment:", err)
	}
	return garment
}

func TestUserCreationAndAuthentication(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := createTestUser(t, db, "testuser", "test@example.com")

	if user.Username != "testuser" {
		t.Errorf("Expected username 'testuser', got %s", user.Username)
	}

	authUser, err := AuthenticateUser(db, "test@example.com", "password123")
	if err != nil {
		t.Fatal("Failed to authenticate user:", err)
	}

	if authUser.ID != user.ID {
		t.Errorf("Expected user ID %d, got %d", user.ID, authUser.ID)
	}

	_, err = AuthenticateUser(db, "test@example.com", "wrongpassword")
	if err == nil {
		t.Error("Expected authentication to fail with wrong password")
	}
}

func TestSessionManagement(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := createTestUser(t, db, "testuser", "test@example.com")

	session, err := CreateSession(db, user.ID, testSessionDuration)
	if err != nil {
		t.Fatal("Failed to create session:", err)
	}

	if len(session.ID) == 0 {
		t.Error("Session ID should not be empty")
	}

	validatedUser, err := ValidateSession(db, session.ID, testSessionDuration)
	if err != nil {
		t.Fatal("Failed to validate session:", err)
	}

	if validatedUser.ID != user.ID {
		t.Errorf("Expected user ID %d, got %d", user.ID, validatedUser.ID)
	}

	err = DeleteSession(db, session.ID)
	if err != nil {
		t.Fatal("Failed to delete session:", err)
	}

	_, err = ValidateSession(db, session.ID, testSessionDuration)
	if err == nil {
		t.Error("Expected session validation to fail after deletion")
	}
}

func TestGarmentOperations(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := createTestUser(t, db, "testuser", "test@example.com")
	garment := createTestGarment(t, db, user.ID, "Chemise blanche")

	if garment.Name != "Chemise blanche" {
		t.Errorf("Expected garment name 'Chemise blanche', got %s", garment.Name)
	}

	garments, err := GetAllGarments(db, user.ID)
	if err != nil {
		t.Fatal("Failed to get garments:", err)
	}
	if len(garments) != 1 {
		t.Errorf("Expected 1 garment, got %d", len(garments))
	}

	updated := *garment
	updated.Name = "Chemise en lin"
	updated.Brand = "Comptoir"
	if err := UpdateGarment(db, user.ID, garment.ID, updated); err != nil {
		t.Fatal("Failed to update garment:", err)
	}

	retrieved, err := GetGarment(db, user.ID, garment.ID)
	if err != nil {
		t.Fatal("Failed to get updated garment:", err)
	}
	if retrieved.Name != "Chemise en lin" {
		t.Errorf("Expected garment name 'Chemise en lin', got %s", retrieved.Name)
	}

	other := createTestUser(t, db, "otheruser", "other@example.com")
	if _, err := GetGarment(db, other.ID, garment.ID); err == nil {
		t.Error("Expected garment to be invisible to another user")
	}

	if err := DeleteGarment(db, user.ID, garment.ID); err != nil {
		t.Fatal("Failed to delete garment:", err)
	}

	if _, err := GetGarment(db, user.ID, garment.ID); err == nil {
		t.Error("Expected garment retrieval to fail after deletion")
	}
}

func TestGarmentWearTracking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := createTestUser(t, db, "testuser", "test@example.com")
	garment := createTestGarment(t, db, user.ID, "Jean brut")

	if garment.WearCount != 0 {
		t.Errorf("Expected wear count 0, got %d", garment.WearCount)
	}

	if err := RecordGarmentWear(db, user.ID, garment.ID); err != nil {
		t.Fatal("Failed to record wear:", err)
	}
	if err := RecordGarmentWear(db, user.ID, garment.ID); err != nil {
		t.Fatal("Failed to record second wear:", err)
	}

	worn, err := GetGarment(db, user.ID, garment.ID)
	if err != nil {
		t.Fatal("Failed to get garment:", err)
	}

	if worn.WearCount != 2 {
		t.Errorf("Expected wear count 2, got %d", worn.WearCount)
	}
	if worn.LastWorn == nil {
		t.Error("Expected last worn to be set")
	}
}

func TestGarmentFiltering(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := createTestUser(t, db, "testuser", "test@example.com")
	createTestGarment(t, db, user.ID, "Pull en laine")
	favorite := createTestGarment(t, db, user.ID, "Robe d'été")

	if err := ToggleGarmentFavorite(db, user.ID, favorite.ID); err != nil {
		t.Fatal("Failed to toggle favorite:", err)
	}

	garments, total, err := GetGarments(db, user.ID, GarmentFilter{FavoriteOnly: true})
	if err != nil {
		t.Fatal("Failed to filter garments:", err)
	}

	if total != 1 {
		t.Errorf("Expected 1 favorite garment, got %d", total)
	}
	if len(garments) != 1 || garments[0].ID != favorite.ID {
		t.Error("Expected the favorite garment in the results")
	}

	garments, total, err = GetGarments(db, user.ID, GarmentFilter{Query: "laine"})
	if err != nil {
		t.Fatal("Failed to search garments:", err)
	}
	if total != 1 || garments[0].Name != "Pull en laine" {
		t.Error("Expected the search to match one garment by name")
	}
}

func TestOutfitDropsNonOwnedGarments(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	owner := createTestUser(t, db, "owner", "owner@example.com")
	other := createTestUser(t, db, "other", "other@example.com")

	mine := createTestGarment(t, db, owner.ID, "Veste")
	theirs := createTestGarment(t, db, other.ID, "Manteau")

	outfit, err := CreateOutfit(db, owner.ID, models.Outfit{
		Name:     "Tenue du soir",
		Occasion: models.OccasionEvening,
		Season:   models.SeasonAll,
	}, []int{mine.ID, theirs.ID, 99999})
	if err != nil {
		t.Fatal("Failed to create outfit:", err)
	}

	if len(outfit.Garments) != 1 {
		t.Fatalf("Expected 1 attached garment, got %d", len(outfit.Garments))
	}
	if outfit.Garments[0].ID != mine.ID {
		t.Error("Expected only the owner's garment to be attached")
	}
}

func TestSuitcasePackingToggle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := createTestUser(t, db, "testuser", "test@example.com")
	first := createTestGarment(t, db, user.ID, "T-shirt")
	second := createTestGarment(t, db, user.ID, "Short")

	suitcase, err := CreateSuitcase(db, user.ID, models.Suitcase{
		Name:          "Week-end à Nice",
		Destination:   "Nice",
		TripType:      models.TripWeekend,
		Climate:       models.ClimateHot,
		DepartureDate: time.Now().AddDate(0, 0, 7),
		ReturnDate:    time.Now().AddDate(0, 0, 9),
	})
	if err != nil {
		t.Fatal("Failed to create suitcase:", err)
	}

	if suitcase.Status != models.SuitcasePreparing {
		t.Errorf("Expected status %q, got %q", models.SuitcasePreparing, suitcase.Status)
	}

	err = AddPackingItems(db, user.ID, suitcase.ID, []int{first.ID, second.ID}, models.PackingClothes)
	if err != nil {
		t.Fatal("Failed to add packing items:", err)
	}

	items, err := GetPackingItems(db, suitcase.ID)
	if err != nil {
		t.Fatal("Failed to get packing items:", err)
	}
	if len(items) != 2 {
		t.Fatalf("Expected 2 packing items, got %d", len(items))
	}

	packed, stats, err := TogglePackingItem(db, user.ID, suitcase.ID, items[0].ID)
	if err != nil {
		t.Fatal("Failed to toggle packing item:", err)
	}
	if !packed {
		t.Error("Expected item to be packed after first toggle")
	}
	if stats.Total != 2 || stats.Packed != 1 {
		t.Errorf("Expected 1/2 packed, got %d/%d", stats.Packed, stats.Total)
	}
	if stats.Percentage != 50 {
		t.Errorf("Expected 50%% progress, got %d", stats.Percentage)
	}

	packed, stats, err = TogglePackingItem(db, user.ID, suitcase.ID, items[0].ID)
	if err != nil {
		t.Fatal("Failed to toggle packing item back:", err)
	}
	if packed {
		t.Error("Expected item to be unpacked after second toggle")
	}
	if stats.Packed != 0 {
		t.Errorf("Expected 0 packed, got %d", stats.Packed)
	}

	other := createTestUser(t, db, "intruder", "intruder@example.com")
	if _, _, err := TogglePackingItem(db, other.ID, suitcase.ID, items[0].ID); err == nil {
		t.Error("Expected toggle to fail for another user's suitcase")
	}
}

func TestSuitcaseCopy(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := createTestUser(t, db, "testuser", "test@example.com")
	garment := createTestGarment(t, db, user.ID, "Pantalon")

	source, err := CreateSuitcase(db, user.ID, models.Suitcase{
		Name:          "Lisbonne",
		TripType:      models.TripWeek,
		Climate:       models.ClimateMild,
		DepartureDate: time.Now().AddDate(0, 0, 3),
		ReturnDate:    time.Now().AddDate(0, 0, 10),
	})
	if err != nil {
		t.Fatal("Failed to create suitcase:", err)
	}

	if err := AddPackingItems(db, user.ID, source.ID, []int{garment.ID}, models.PackingClothes); err != nil {
		t.Fatal("Failed to add packing item:", err)
	}
	items, err := GetPackingItems(db, source.ID)
	if err != nil {
		t.Fatal("Failed to get packing items:", err)
	}
	if _, _, err := TogglePackingItem(db, user.ID, source.ID, items[0].ID); err != nil {
		t.Fatal("Failed to pack item:", err)
	}

	copied, err := CopySuitcase(db, user.ID, source.ID, "Lisbonne bis",
		time.Now().AddDate(0, 1, 0), time.Now().AddDate(0, 1, 7))
	if err != nil {
		t.Fatal("Failed to copy suitcase:", err)
	}

	if copied.Name != "Lisbonne bis" {
		t.Errorf("Expected copied name 'Lisbonne bis', got %s", copied.Name)
	}
	if len(copied.Items) != 1 {
		t.Fatalf("Expected 1 copied item, got %d", len(copied.Items))
	}
	if copied.Items[0].IsPacked {
		t.Error("Expected packed flags to be reset on copy")
	}
}

func TestFriendRequestDuplicateRejection(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	request, err := SendFriendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatal("Failed to send friend request:", err)
	}

	if _, err := SendFriendRequest(db, alice.ID, bob.ID); err != ErrFriendRequestPending {
		t.Errorf("Expected ErrFriendRequestPending, got %v", err)
	}
	if _, err := SendFriendRequest(db, bob.ID, alice.ID); err != ErrFriendRequestPending {
		t.Errorf("Expected ErrFriendRequestPending in reverse direction, got %v", err)
	}

	if err := RespondToFriendRequest(db, bob.ID, request.ID, true); err != nil {
		t.Fatal("Failed to accept friend request:", err)
	}

	if _, err := SendFriendRequest(db, alice.ID, bob.ID); err != ErrAlreadyFriends {
		t.Errorf("Expected ErrAlreadyFriends, got %v", err)
	}

	areFriends, err := AreFriends(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatal("Failed to check friendship:", err)
	}
	if !areFriends {
		t.Error("Expected alice and bob to be friends")
	}
}

func TestFriendRequestResponderMustBeRecipient(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	request, err := SendFriendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatal("Failed to send friend request:", err)
	}

	if err := RespondToFriendRequest(db, alice.ID, request.ID, true); err == nil {
		t.Error("Expected the requester to be unable to accept their own request")
	}
}

func TestMarketplaceListingLifecycle(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seller := createTestUser(t, db, "seller", "seller@example.com")
	buyer := createTestUser(t, db, "buyer", "buyer@example.com")
	garment := createTestGarment(t, db, seller.ID, "Blouson en cuir")

	listing, err := CreateListing(db, seller.ID, models.Listing{
		GarmentID: garment.ID,
		Price:     85.0,
	})
	if err != nil {
		t.Fatal("Failed to create listing:", err)
	}

	if listing.Status != models.ListingForSale {
		t.Errorf("Expected status %q, got %q", models.ListingForSale, listing.Status)
	}

	if _, err := CreateListing(db, seller.ID, models.Listing{GarmentID: garment.ID, Price: 90}); err != ErrGarmentAlreadyListed {
		t.Errorf("Expected ErrGarmentAlreadyListed, got %v", err)
	}

	// The seller's own listing must not appear in their browse results
	listings, total, err := BrowseListings(db, seller.ID, ListingFilter{})
	if err != nil {
		t.Fatal("Failed to browse listings:", err)
	}
	if total != 0 || len(listings) != 0 {
		t.Error("Expected the seller's browse results to exclude their own listing")
	}

	listings, total, err = BrowseListings(db, buyer.ID, ListingFilter{})
	if err != nil {
		t.Fatal("Failed to browse listings:", err)
	}
	if total != 1 || len(listings) != 1 {
		t.Fatalf("Expected 1 listing for the buyer, got %d", total)
	}

	transaction, err := MarkListingSold(db, seller.ID, listing.ID, buyer.ID, nil)
	if err != nil {
		t.Fatal("Failed to mark listing sold:", err)
	}

	if transaction.AgreedPrice != 85.0 {
		t.Errorf("Expected agreed price to default to the listing price, got %f", transaction.AgreedPrice)
	}
	if transaction.Status != models.TransactionOngoing {
		t.Errorf("Expected transaction status %q, got %q", models.TransactionOngoing, transaction.Status)
	}

	sold, err := GetListing(db, listing.ID)
	if err != nil {
		t.Fatal("Failed to get sold listing:", err)
	}
	if sold.Status != models.ListingSold {
		t.Errorf("Expected listing status %q, got %q", models.ListingSold, sold.Status)
	}
	if sold.BuyerID == nil || *sold.BuyerID != buyer.ID {
		t.Error("Expected the buyer to be recorded on the listing")
	}
}

func TestSellerReviewRequiresDelivery(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seller := createTestUser(t, db, "seller", "seller@example.com")
	buyer := createTestUser(t, db, "buyer", "buyer@example.com")
	garment := createTestGarment(t, db, seller.ID, "Écharpe")

	listing, err := CreateListing(db, seller.ID, models.Listing{GarmentID: garment.ID, Price: 20})
	if err != nil {
		t.Fatal("Failed to create listing:", err)
	}

	transaction, err := MarkListingSold(db, seller.ID, listing.ID, buyer.ID, nil)
	if err != nil {
		t.Fatal("Failed to mark listing sold:", err)
	}

	review := models.SellerReview{
		TransactionID: transaction.ID,
		Rating:        5,
		Communication: 5,
		ItemAccuracy:  4,
		Shipping:      5,
		Value:         4,
	}

	if _, err := CreateSellerReview(db, buyer.ID, review); err == nil {
		t.Error("Expected review to be rejected before delivery")
	}

	if err := UpdateTransactionStatus(db, buyer.ID, transaction.ID, models.TransactionDelivered); err != nil {
		t.Fatal("Failed to mark transaction delivered:", err)
	}

	if _, err := CreateSellerReview(db, seller.ID, review); err == nil {
		t.Error("Expected the seller to be unable to review themselves")
	}

	created, err := CreateSellerReview(db, buyer.ID, review)
	if err != nil {
		t.Fatal("Failed to create review:", err)
	}
	if created.SellerID != seller.ID {
		t.Errorf("Expected review seller %d, got %d", seller.ID, created.SellerID)
	}

	if _, err := CreateSellerReview(db, buyer.ID, review); err == nil {
		t.Error("Expected duplicate review to be rejected")
	}

	rating, err := GetSellerRating(db, seller.ID)
	if err != nil {
		t.Fatal("Failed to get seller rating:", err)
	}
	if rating.ReviewCount != 1 {
		t.Errorf("Expected 1 review, got %d", rating.ReviewCount)
	}
	if rating.AvgRating != 5 {
		t.Errorf("Expected average rating 5, got %f", rating.AvgRating)
	}
}

func TestSiteSettingsSingleton(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	settings, err := GetSiteSettings(db)
	if err != nil {
		t.Fatal("Failed to get site settings:", err)
	}

	if !settings.RegistrationOpen {
		t.Error("Expected registration to be open by default")
	}

	settings.RegistrationOpen = false
	settings.MaintenanceMode = true
	settings.MaintenanceMessage = "Retour bientôt"
	if err := UpdateSiteSettings(db, *settings); err != nil {
		t.Fatal("Failed to update site settings:", err)
	}

	updated, err := GetSiteSettings(db)
	if err != nil {
		t.Fatal("Failed to reload site settings:", err)
	}
	if updated.RegistrationOpen {
		t.Error("Expected registration to be closed")
	}
	if !updated.MaintenanceMode || updated.MaintenanceMessage != "Retour bientôt" {
		t.Error("Expected maintenance mode and message to persist")
	}

	open, err := IsRegistrationOpen(db)
	if err != nil {
		t.Fatal("Failed to check registration:", err)
	}
	if open {
		t.Error("Expected IsRegistrationOpen to report closed")
	}
}

func TestModerationSanctions(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	admin := createTestUser(t, db, "admin", "admin@example.com")
	target := createTestUser(t, db, "target", "target@example.com")

	sanction, err := ActiveSanction(db, target.ID)
	if err != nil {
		t.Fatal("Failed to check sanctions:", err)
	}
	if sanction != nil {
		t.Error("Expected no active sanction on a fresh user")
	}

	endsAt := time.Now().AddDate(0, 0, 7)
	_, err = CreateModerationAction(db, admin.ID, models.ModerationAction{
		UserID:     target.ID,
		ActionType: models.ActionSuspension,
		Reason:     "spam",
		EndsAt:     &endsAt,
	})
	if err != nil {
		t.Fatal("Failed to create suspension:", err)
	}

	sanction, err = ActiveSanction(db, target.ID)
	if err != nil {
		t.Fatal("Failed to check sanctions:", err)
	}
	if sanction == nil || sanction.ActionType != models.ActionSuspension {
		t.Fatal("Expected an active suspension")
	}

	if err := LiftSanctions(db, admin.ID, target.ID, "appeal accepted"); err != nil {
		t.Fatal("Failed to lift sanctions:", err)
	}

	sanction, err = ActiveSanction(db, target.ID)
	if err != nil {
		t.Fatal("Failed to check sanctions:", err)
	}
	if sanction != nil {
		t.Error("Expected no active sanction after lifting")
	}

	// A ban has no end date and stays active until lifted
	_, err = CreateModerationAction(db, admin.ID, models.ModerationAction{
		UserID:     target.ID,
		ActionType: models.ActionBan,
		Reason:     "repeat offense",
		EndsAt:     &endsAt,
	})
	if err != nil {
		t.Fatal("Failed to create ban:", err)
	}

	sanction, err = ActiveSanction(db, target.ID)
	if err != nil {
		t.Fatal("Failed to check sanctions:", err)
	}
	if sanction == nil || sanction.ActionType != models.ActionBan {
		t.Fatal("Expected an active ban")
	}
	if sanction.EndsAt != nil {
		t.Error("Expected the ban to carry no end date")
	}
}

func TestCalendarEventOutfitOwnership(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	user := createTestUser(t, db, "testuser", "test@example.com")
	other := createTestUser(t, db, "other", "other@example.com")

	garment := createTestGarment(t, db, other.ID, "Costume")
	outfit, err := CreateOutfit(db, other.ID, models.Outfit{
		Name:     "Mariage",
		Occasion: models.OccasionCeremony,
		Season:   models.SeasonAll,
	}, []int{garment.ID})
	if err != nil {
		t.Fatal("Failed to create outfit:", err)
	}

	event, err := CreateEvent(db, user.ID, models.CalendarEvent{
		Title:     "Dîner",
		EventType: models.EventWearOutfit,
		Date:      time.Now().AddDate(0, 0, 2),
		OutfitID:  &outfit.ID,
	})
	if err != nil {
		t.Fatal("Failed to create event:", err)
	}

	if event.OutfitID != nil {
		t.Error("Expected a link to another user's outfit to be dropped")
	}
}

func TestAdminBulkMarkGarmentsWashed(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	g1 := createTestGarment(t, db, alice.ID, "Chemise")
	g2 := createTestGarment(t, db, bob.ID, "Pantalon")
	for _, g := range []struct{ userID, garmentID int }{{alice.ID, g1.ID}, {bob.ID, g2.ID}} {
		if err := FlagGarmentForWash(db, g.userID, g.garmentID); err != nil {
			t.Fatal("Failed to flag garment for wash:", err)
		}
	}

	// One call clears flags across both owners
	count, err := AdminMarkGarmentsWashed(db, []int{g1.ID, g2.ID})
	if err != nil {
		t.Fatal("Failed to mark garments washed:", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 garments changed, got %d", count)
	}

	got, err := GetGarment(db, bob.ID, g2.ID)
	if err != nil {
		t.Fatal("Failed to get garment:", err)
	}
	if got.NeedsWash {
		t.Error("Expected the wash flag to be cleared")
	}
}

func TestAdminBulkRespondFriendRequests(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	carol := createTestUser(t, db, "carol", "carol@example.com")

	pending, err := SendFriendRequest(db, alice.ID, bob.ID)
	if err != nil {
		t.Fatal("Failed to send friend request:", err)
	}

	answered, err := SendFriendRequest(db, alice.ID, carol.ID)
	if err != nil {
		t.Fatal("Failed to send friend request:", err)
	}
	if err := RespondToFriendRequest(db, carol.ID, answered.ID, false); err != nil {
		t.Fatal("Failed to decline friend request:", err)
	}

	// Only the pending request changes; the already-declined one is untouched
	count, err := AdminRespondFriendRequests(db, []int{pending.ID, answered.ID}, true)
	if err != nil {
		t.Fatal("Failed to respond to friend requests:", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 request changed, got %d", count)
	}

	f, err := GetFriendship(db, pending.ID)
	if err != nil {
		t.Fatal("Failed to get friendship:", err)
	}
	if f.Status != models.FriendshipAccepted {
		t.Errorf("Expected status %q, got %q", models.FriendshipAccepted, f.Status)
	}
	if f.RespondedAt == nil {
		t.Error("Expected the response time to be stamped")
	}

	f, err = GetFriendship(db, answered.ID)
	if err != nil {
		t.Fatal("Failed to get friendship:", err)
	}
	if f.Status != models.FriendshipDeclined {
		t.Error("Expected the declined request to stay declined")
	}
}

func TestAdminBulkListingCommands(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	seller := createTestUser(t, db, "seller", "seller@example.com")
	g1 := createTestGarment(t, db, seller.ID, "Veste")
	g2 := createTestGarment(t, db, seller.ID, "Echarpe")
	g3 := createTestGarment(t, db, seller.ID, "Bonnet")

	forSale, err := CreateListing(db, seller.ID, models.Listing{GarmentID: g1.ID, Price: 40})
	if err != nil {
		t.Fatal("Failed to create listing:", err)
	}
	reserved, err := CreateListing(db, seller.ID, models.Listing{GarmentID: g2.ID, Price: 15})
	if err != nil {
		t.Fatal("Failed to create listing:", err)
	}
	if err := MarkListingReserved(db, seller.ID, reserved.ID); err != nil {
		t.Fatal("Failed to reserve listing:", err)
	}
	withdrawn, err := CreateListing(db, seller.ID, models.Listing{GarmentID: g3.ID, Price: 10})
	if err != nil {
		t.Fatal("Failed to create listing:", err)
	}
	if err := WithdrawListing(db, seller.ID, withdrawn.ID); err != nil {
		t.Fatal("Failed to withdraw listing:", err)
	}

	// Reserving only touches listings currently for sale
	count, err := AdminMarkListingsReserved(db, []int{forSale.ID, reserved.ID, withdrawn.ID})
	if err != nil {
		t.Fatal("Failed to reserve listings:", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 listing reserved, got %d", count)
	}

	// Selling closes for-sale and reserved listings but not withdrawn ones
	count, err = AdminMarkListingsSold(db, []int{forSale.ID, reserved.ID, withdrawn.ID})
	if err != nil {
		t.Fatal("Failed to mark listings sold:", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 listings sold, got %d", count)
	}

	sold, err := GetListing(db, reserved.ID)
	if err != nil {
		t.Fatal("Failed to get listing:", err)
	}
	if sold.Status != models.ListingSold {
		t.Errorf("Expected status %q, got %q", models.ListingSold, sold.Status)
	}
	if sold.SoldAt == nil {
		t.Error("Expected the sale time to be stamped")
	}
	if sold.BuyerID != nil {
		t.Error("Expected no buyer on an off-site sale")
	}

	still, err := GetListing(db, withdrawn.ID)
	if err != nil {
		t.Fatal("Failed to get listing:", err)
	}
	if still.Status != models.ListingWithdrawn {
		t.Error("Expected the withdrawn listing to be untouched")
	}
}

func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}
