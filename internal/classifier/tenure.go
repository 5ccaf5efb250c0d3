package classifier

import (
	"strings"
	"time"
)

// JoinedLayout 平台显示的加入日期格式,例如 "Jun 1, 2025"
const JoinedLayout = "Jan 2, 2006"

const daysPerMonth = 30

// Tenure 根据加入日期计算在籍天数和月数,无法解析时全部返回nil
func Tenure(joined string, now time.Time) (*time.Time, *int, *int) {
	at, err := time.ParseInLocation(JoinedLayout, strings.TrimSpace(joined), now.Location())
	if err != nil {
		return nil, nil, nil
	}
	elapsed := now.Sub(at)
	days := int(elapsed / (24 * time.Hour))
	if elapsed%(24*time.Hour) < 0 {
		days--
	}
	months := floorDiv(days, daysPerMonth)
	return &at, &days, &months
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
