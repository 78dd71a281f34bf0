package constants

// 处罚规则常量
const (
	PenaltyLateThresholdMinutes = 5  // 超过该分钟数算迟到取餐
	PenaltySecondOffensePoints  = 5  // 第二次迟到扣分
	PenaltyRepeatOffensePoints  = 10 // 第三次及以后迟到扣分
	PenaltyBlockThreshold       = 50 // 累计积分达到该值封禁下单
)

// 取餐码常量
const (
	OrderTokenLength  = 6
	OrderTokenCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// 下单默认值常量
const (
	DefaultPickupOffsetMinutes = 30 // 未指定取餐时间时默认下单后 30 分钟
)

// 实时事件常量
const (
	EventOrderNew      = "order:new"
	EventOrderUpdate   = "order:update"
	EventOrderReady    = "order:ready"
	EventQueueUpdate   = "queue:update"
	EventPenaltyIssued = "penalty:issued"
)

// 实时频道前缀常量
const (
	ChannelVendorPrefix  = "vendor:"
	ChannelStudentPrefix = "student:"
	ChannelOrderPrefix   = "order:"
)

// 队列常量
const (
	QueueDefault           = "default"
	TaskPenaltyProcess     = "penalty:process"
	TaskPredictionFeedback = "prediction:feedback"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "cr"
)
