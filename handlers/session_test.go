package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"parkhub/database"
	"parkhub/models"
)

func createLot(t *testing.T, totalSpots, occupiedSpots int, pricePerHour float64) *models.ParkingLot {
	t.Helper()
	lot := &models.ParkingLot{
		Name:          "測試停車場",
		Type:          "car",
		TotalSpots:    totalSpots,
		OccupiedSpots: occupiedSpots,
		Status:        models.LotStatusAvailable,
		PricePerHour:  pricePerHour,
	}
	if err := database.DB.Create(lot).Error; err != nil {
		t.Fatalf("Failed to create test lot: %v", err)
	}
	return lot
}

func TestBookParkingRejectsNonPositiveSlots(t *testing.T) {
	setupTestDB(t)
	lot := createLot(t, 5, 0, 100)

	r := newTestRouter(1, "driver")
	r.POST("/book", BookParking)

	body := fmt.Sprintf(`{"parking_lot_id": %d, "slots": 0, "start_time": "2026-09-01T10:00:00Z", "end_time": "2026-09-01T12:00:00Z"}`, lot.ParkingLotID)
	w := performRequest(r, "POST", "/book", body)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Success {
		t.Error("Expected success=false")
	}
	if resp.Message != "slots must be a positive whole number" {
		t.Errorf("Unexpected message: %s", resp.Message)
	}
}

func TestBookParkingUnknownLotReturns404(t *testing.T) {
	setupTestDB(t)

	r := newTestRouter(1, "driver")
	r.POST("/book", BookParking)

	body := `{"parking_lot_id": 999, "slots": 1, "start_time": "2026-09-01T10:00:00Z", "end_time": "2026-09-01T12:00:00Z"}`
	w := performRequest(r, "POST", "/book", body)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestStartSessionConflictReturns400(t *testing.T) {
	setupTestDB(t)
	lot := createLot(t, 5, 0, 100)

	r := newTestRouter(1, "driver")
	r.POST("/start-session", StartSession)

	body := fmt.Sprintf(`{"parking_lot_id": %d, "vehicle_type": "car"}`, lot.ParkingLotID)
	if w := performRequest(r, "POST", "/start-session", body); w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201 on first start, got %d: %s", w.Code, w.Body.String())
	}

	w := performRequest(r, "POST", "/start-session", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 on duplicate start, got %d", w.Code)
	}
	if resp := decodeResponse(t, w); resp.Success {
		t.Error("Expected success=false")
	}
}

func TestCompleteSessionWithoutActiveReturns404(t *testing.T) {
	setupTestDB(t)

	r := newTestRouter(1, "driver")
	r.POST("/complete-session", CompleteSession)

	w := performRequest(r, "POST", "/complete-session", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestGetActiveSessionReturnsNullWhenIdle(t *testing.T) {
	setupTestDB(t)

	r := newTestRouter(1, "driver")
	r.GET("/active-session", GetActiveSession)

	w := performRequest(r, "GET", "/active-session", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Error("Expected success=true")
	}
	if resp.Data != nil {
		t.Errorf("Expected empty data, got %+v", resp.Data)
	}
}

func TestGetParkingLotsSortedByDistance(t *testing.T) {
	setupTestDB(t)

	near := &models.ParkingLot{Name: "近的", TotalSpots: 5, Status: models.LotStatusAvailable, Latitude: 0.1, Longitude: 0.1}
	far := &models.ParkingLot{Name: "遠的", TotalSpots: 5, Status: models.LotStatusAvailable, Latitude: 20, Longitude: 20}
	for _, lot := range []*models.ParkingLot{far, near} {
		if err := database.DB.Create(lot).Error; err != nil {
			t.Fatalf("Failed to create lot: %v", err)
		}
	}

	r := newTestRouter(1, "driver")
	r.GET("/lots", GetParkingLots)

	w := performRequest(r, "GET", "/lots?lat=0&lon=0", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Fatal("Expected success=true")
	}

	lots, ok := resp.Data.([]interface{})
	if !ok || len(lots) != 2 {
		t.Fatalf("Expected 2 lots in data, got %+v", resp.Data)
	}
	first, ok := lots[0].(map[string]interface{})
	if !ok {
		t.Fatalf("Unexpected lot shape: %+v", lots[0])
	}
	if first["name"] != "近的" {
		t.Errorf("Expected nearest lot first, got %v", first["name"])
	}
	if _, hasDistance := first["distance"]; !hasDistance {
		t.Error("Expected distance field when coordinates are given")
	}
}

func TestGuardEntryAndExitFlow(t *testing.T) {
	setupTestDB(t)
	lot := createLot(t, 5, 0, 100)

	driver := &models.User{Name: "駕駛", Email: "driver@example.com", Password: "x", Role: "driver"}
	if err := database.DB.Create(driver).Error; err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}

	r := newTestRouter(2, "guard")
	r.POST("/guard/entry", GuardEntry)
	r.POST("/guard/exit", GuardExit)

	body := fmt.Sprintf(`{"user_id": %d, "parking_lot_id": %d}`, driver.UserID, lot.ParkingLotID)
	if w := performRequest(r, "POST", "/guard/entry", body); w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on entry, got %d: %s", w.Code, w.Body.String())
	}

	// 入場後稍候結算，至少計一小時
	time.Sleep(10 * time.Millisecond)

	w := performRequest(r, "POST", "/guard/exit", body)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on exit, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeResponse(t, w)
	session, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Unexpected session shape: %+v", resp.Data)
	}
	if session["status"] != models.SessionStatusCompleted {
		t.Errorf("Expected completed session, got %v", session["status"])
	}
	if session["total_amount"].(float64) != 100 {
		t.Errorf("Expected one-hour minimum amount 100, got %v", session["total_amount"])
	}

	// 再次出場必須 404
	if w := performRequest(r, "POST", "/guard/exit", body); w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 on second exit, got %d", w.Code)
	}
}
