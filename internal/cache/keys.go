package cache

import (
	"fmt"
	"time"
)

// 缓存键与 TTL 约定
const (
	VendorMenuTTL  = 5 * time.Minute
	VendorStatsTTL = time.Minute
)

// VendorMenuKey 档口菜单缓存键
func VendorMenuKey(vendorID uint) string {
	return fmt.Sprintf("vendor:%d:menu", vendorID)
}

// VendorStatsKey 档口统计缓存键
func VendorStatsKey(vendorID uint) string {
	return fmt.Sprintf("vendor:%d:stats", vendorID)
}
