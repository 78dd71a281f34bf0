package prediction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/canteen-rush/internal/logger"
)

const (
	defaultTimeoutSeconds = 5
	queueLoadFactor       = 0.2 // 回退公式中每个排队订单增加的等待系数
)

// InputItem 预测请求订单项
type InputItem struct {
	FoodItemID   uint `json:"food_item_id"`
	Quantity     int  `json:"quantity"`
	BasePrepTime int  `json:"base_prep_time"`
}

// Input 预测请求参数
type Input struct {
	VendorID            uint        `json:"vendor_id"`
	OrderItems          []InputItem `json:"order_items"`
	RequestedPickupTime time.Time   `json:"requested_pickup_time"`
	CurrentTime         time.Time   `json:"current_time"`
	CurrentQueueLength  int         `json:"current_queue_length"`
}

// TotalPrepMinutes 订单项备餐时长合计：Σ(单品时长 × 数量)
func (in Input) TotalPrepMinutes() int {
	total := 0
	for _, item := range in.OrderItems {
		if item.BasePrepTime <= 0 || item.Quantity <= 0 {
			continue
		}
		total += item.BasePrepTime * item.Quantity
	}
	return total
}

// Estimate 预测结果
type Estimate struct {
	WaitMinutes int
	ReadyTime   time.Time
}

// FeedbackInput 实际等待时间反馈参数
type FeedbackInput struct {
	VendorID          uint `json:"vendor_id"`
	QueueLength       int  `json:"queue_length"`
	ActualWaitMinutes int  `json:"actual_wait_minutes"`
	DayOfWeek         int  `json:"day_of_week"`
	Hour              int  `json:"hour"`
}

// Client 等待时间预测服务客户端
// 预测失败不向上传播错误，统一落到本地回退公式。
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建预测客户端，baseURL 为空时始终走回退公式
func New(baseURL string, timeoutSeconds int) *Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultTimeoutSeconds
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

// NewNoop 创建永远走回退公式的客户端
func NewNoop() *Client {
	return New("", 0)
}

// Enabled 是否配置了外部预测服务
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Predict 预测等待时间与预计出餐时刻，任何失败都回退到本地公式
func (c *Client) Predict(ctx context.Context, input Input) Estimate {
	if !c.Enabled() {
		return FallbackEstimate(input)
	}

	var resp struct {
		PredictedReadyTime   time.Time `json:"predicted_ready_time"`
		EstimatedWaitMinutes float64   `json:"estimated_wait_minutes"`
	}
	if err := c.postJSON(ctx, "/predict", input, &resp); err != nil {
		logger.Warnw("prediction_fallback",
			"vendor_id", input.VendorID,
			"queue_length", input.CurrentQueueLength,
			"error", err,
		)
		return FallbackEstimate(input)
	}
	if resp.EstimatedWaitMinutes <= 0 {
		logger.Warnw("prediction_fallback",
			"vendor_id", input.VendorID,
			"queue_length", input.CurrentQueueLength,
			"error", "non_positive_estimate",
		)
		return FallbackEstimate(input)
	}

	wait := int(math.Ceil(resp.EstimatedWaitMinutes))
	ready := resp.PredictedReadyTime
	if ready.IsZero() {
		ready = currentTimeOrNow(input).Add(time.Duration(wait) * time.Minute)
	}
	return Estimate{WaitMinutes: wait, ReadyTime: ready}
}

// Feedback 上报实际等待时间（尽力而为）
func (c *Client) Feedback(ctx context.Context, input FeedbackInput) error {
	if !c.Enabled() {
		return nil
	}
	return c.postJSON(ctx, "/feedback", input, nil)
}

// FallbackEstimate 本地回退：基础备餐时长取订单项合计，预计出餐时刻从当前时间顺延
func FallbackEstimate(input Input) Estimate {
	wait := Fallback(input.TotalPrepMinutes(), input.CurrentQueueLength)
	return Estimate{
		WaitMinutes: wait,
		ReadyTime:   currentTimeOrNow(input).Add(time.Duration(wait) * time.Minute),
	}
}

func currentTimeOrNow(input Input) time.Time {
	if input.CurrentTime.IsZero() {
		return time.Now()
	}
	return input.CurrentTime
}

// Fallback 本地回退公式：基础备餐时长 ×（1 + 0.2 × 排队长度），向上取整
func Fallback(basePrepMinutes, queueLength int) int {
	if basePrepMinutes <= 0 {
		basePrepMinutes = 10
	}
	if queueLength < 0 {
		queueLength = 0
	}
	estimate := float64(basePrepMinutes) * (1 + queueLoadFactor*float64(queueLength))
	return int(math.Ceil(estimate))
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http status %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(respBytes, out)
}
