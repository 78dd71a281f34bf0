package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/canteen-rush/internal/constants"
	"github.com/canteen-rush/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Event 实时事件消息体
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Publisher 实时事件发布器
// 通过 Redis 发布订阅把订单与处罚事件推给实时网关，发布失败只记日志不阻断业务。
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布器，client 为 nil 时所有发布为空操作
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Enabled 是否启用实时推送
func (p *Publisher) Enabled() bool {
	return p != nil && p.client != nil
}

// ToVendor 向档口频道发布事件
func (p *Publisher) ToVendor(ctx context.Context, vendorID uint, event string, data interface{}) {
	p.publish(ctx, fmt.Sprintf("%s%d", constants.ChannelVendorPrefix, vendorID), event, data)
}

// ToStudent 向学生频道发布事件
func (p *Publisher) ToStudent(ctx context.Context, studentID uint, event string, data interface{}) {
	p.publish(ctx, fmt.Sprintf("%s%d", constants.ChannelStudentPrefix, studentID), event, data)
}

// ToOrder 向订单频道发布事件（按取餐码订阅）
func (p *Publisher) ToOrder(ctx context.Context, orderToken string, event string, data interface{}) {
	p.publish(ctx, constants.ChannelOrderPrefix+orderToken, event, data)
}

func (p *Publisher) publish(ctx context.Context, channel, event string, data interface{}) {
	if !p.Enabled() {
		return
	}
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		logger.Warnw("realtime_event_marshal_failed", "channel", channel, "event", event, "error", err)
		return
	}
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		logger.Warnw("realtime_event_publish_failed", "channel", channel, "event", event, "error", err)
	}
}
