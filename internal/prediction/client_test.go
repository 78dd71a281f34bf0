package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFallbackFormula(t *testing.T) {
	cases := []struct {
		basePrep    int
		queueLength int
		want        int
	}{
		{10, 0, 10},
		{10, 2, 14},
		{10, 3, 16},
		{7, 1, 9},  // 7 * 1.2 = 8.4 向上取整
		{15, 5, 30},
		{0, 4, 18}, // 非法基础时长回退到默认 10 分钟
		{10, -1, 10},
	}
	for _, c := range cases {
		got := Fallback(c.basePrep, c.queueLength)
		if got != c.want {
			t.Fatalf("Fallback(%d, %d) = %d, want %d", c.basePrep, c.queueLength, got, c.want)
		}
	}
}

func TestPredictUsesServiceEstimate(t *testing.T) {
	ready := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			VendorID   uint `json:"vendor_id"`
			OrderItems []struct {
				FoodItemID   uint `json:"food_item_id"`
				Quantity     int  `json:"quantity"`
				BasePrepTime int  `json:"base_prep_time"`
			} `json:"order_items"`
			CurrentQueueLength int `json:"current_queue_length"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request failed: %v", err)
		}
		if req.VendorID != 1 || req.CurrentQueueLength != 2 {
			t.Fatalf("unexpected request: %+v", req)
		}
		if len(req.OrderItems) != 1 || req.OrderItems[0].BasePrepTime != 10 || req.OrderItems[0].Quantity != 1 {
			t.Fatalf("unexpected order items: %+v", req.OrderItems)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predicted_ready_time": "2026-03-14T12:30:00Z", "estimated_wait_minutes": 17.3}`))
	}))
	defer srv.Close()

	client := New(srv.URL, 5)
	got := client.Predict(context.Background(), Input{
		VendorID:           1,
		OrderItems:         []InputItem{{FoodItemID: 7, Quantity: 1, BasePrepTime: 10}},
		CurrentQueueLength: 2,
	})
	if got.WaitMinutes != 18 {
		t.Fatalf("WaitMinutes = %d, want 18", got.WaitMinutes)
	}
	if !got.ReadyTime.Equal(ready) {
		t.Fatalf("ReadyTime = %v, want %v", got.ReadyTime, ready)
	}
}

func TestPredictFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	client := New(srv.URL, 5)
	got := client.Predict(context.Background(), Input{
		VendorID:           1,
		OrderItems:         []InputItem{{Quantity: 2, BasePrepTime: 5}},
		CurrentTime:        now,
		CurrentQueueLength: 2,
	})
	// 回退：10 × 1.4 = 14
	if got.WaitMinutes != 14 {
		t.Fatalf("WaitMinutes = %d, want fallback 14", got.WaitMinutes)
	}
	if !got.ReadyTime.Equal(now.Add(14 * time.Minute)) {
		t.Fatalf("ReadyTime = %v, want %v", got.ReadyTime, now.Add(14*time.Minute))
	}
}

func TestPredictFallsBackWhenDisabled(t *testing.T) {
	client := NewNoop()
	if client.Enabled() {
		t.Fatal("noop client should be disabled")
	}
	got := client.Predict(context.Background(), Input{
		OrderItems:         []InputItem{{Quantity: 1, BasePrepTime: 10}},
		CurrentQueueLength: 3,
	})
	if got.WaitMinutes != 16 {
		t.Fatalf("WaitMinutes = %d, want fallback 16", got.WaitMinutes)
	}
	if got.ReadyTime.IsZero() {
		t.Fatal("ReadyTime should default to now when current time is unset")
	}
}

func TestTotalPrepMinutes(t *testing.T) {
	in := Input{OrderItems: []InputItem{
		{Quantity: 2, BasePrepTime: 5},
		{Quantity: 1, BasePrepTime: 3},
		{Quantity: 0, BasePrepTime: 9},
		{Quantity: 4, BasePrepTime: -1},
	}}
	if got := in.TotalPrepMinutes(); got != 13 {
		t.Fatalf("TotalPrepMinutes = %d, want 13", got)
	}
}

func TestFeedbackNoopWhenDisabled(t *testing.T) {
	if err := NewNoop().Feedback(context.Background(), FeedbackInput{VendorID: 1}); err != nil {
		t.Fatalf("Feedback on disabled client should be nil, got %v", err)
	}
}
