package model

import "time"

// NotAvailable 无法确定字段时使用的占位值
const NotAvailable = "N/A"

// MemberRecord 单个成员的结构化记录,由一个原始成员卡片文本生成,持久化后不可修改
type MemberRecord struct {
	Page     int `json:"page"`
	Position int `json:"position"`
	Sequence int `json:"sequence"`

	Name         string     `json:"name"`
	Tier         string     `json:"tier"`
	Email        string     `json:"email"`
	Activity     string     `json:"activity"`
	Joined       string     `json:"joined"`
	JoinedAt     *time.Time `json:"joined_at,omitempty"`
	Value        string     `json:"value"`
	Contribution string     `json:"contribution"`
	Renewal      string     `json:"renewal"`
	Handle       string     `json:"handle"`
	Bio          string     `json:"bio"`
	Location     string     `json:"location"`
	InvitedBy    string     `json:"invited_by"`
	Invited      string     `json:"invited"`

	// 无法解析加入日期时两者都为nil,而不是0
	TenureDays   *int `json:"tenure_days,omitempty"`
	TenureMonths *int `json:"tenure_months,omitempty"`

	// 分类器内部失败时的诊断信息,不持久化
	Diagnostic string `json:"-"`
}

// NewMemberRecord 返回所有文本字段都为占位值的记录
func NewMemberRecord() MemberRecord {
	return MemberRecord{
		Name:         NotAvailable,
		Tier:         NotAvailable,
		Email:        NotAvailable,
		Activity:     NotAvailable,
		Joined:       NotAvailable,
		Value:        NotAvailable,
		Contribution: NotAvailable,
		Renewal:      NotAvailable,
		Handle:       NotAvailable,
		Bio:          NotAvailable,
		Location:     NotAvailable,
		InvitedBy:    NotAvailable,
		Invited:      NotAvailable,
	}
}

// Enrichment 从成员详情页获取的补充字段
type Enrichment struct {
	Email        string
	Contribution string
	// 辅助标签页不可用导致整个会话被重启
	Restarted bool
	// 重启次数耗尽时的错误(*errs.SessionError),此时会话已不可用
	RestartErr error
}
