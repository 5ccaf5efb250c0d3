package classifier

import (
	"regexp"
	"strings"

	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
)

// Rule 一条有序的字段匹配规则,第一条匹配的规则消费该行
type Rule struct {
	Name  string
	Match func(line, lower string) bool
	Apply func(rec *model.MemberRecord, line string)
}

var renewDays = regexp.MustCompile(`(\d+)\s*days`)

// DefaultRules 返回平台成员卡片的默认规则顺序,顺序即优先级
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:  "online",
			Match: func(_, lower string) bool { return strings.Contains(lower, "online now") },
			Apply: func(rec *model.MemberRecord, _ string) { rec.Activity = "Online now" },
		},
		{
			Name:  "active",
			Match: func(_, lower string) bool { return strings.Contains(lower, "active") },
			Apply: func(rec *model.MemberRecord, line string) { rec.Activity = activity(line) },
		},
		{
			Name:  "handle",
			Match: func(line, _ string) bool { return strings.HasPrefix(line, "@") },
			Apply: func(rec *model.MemberRecord, line string) { rec.Handle = line },
		},
		{
			Name:  "joined",
			Match: func(line, _ string) bool { return strings.HasPrefix(line, "Joined") },
			Apply: func(rec *model.MemberRecord, line string) {
				rec.Joined = strings.TrimSpace(strings.ReplaceAll(line, "Joined", ""))
			},
		},
		{
			Name:  "value",
			Match: func(line, _ string) bool { return hasAnyPrefix(line, "$", "€", "£", "Free") },
			Apply: func(rec *model.MemberRecord, line string) { rec.Value = line },
		},
		{
			Name:  "renewal",
			Match: func(_, lower string) bool { return strings.Contains(lower, "renew") },
			Apply: func(rec *model.MemberRecord, line string) {
				if m := renewDays.FindStringSubmatch(line); m != nil {
					rec.Renewal = m[1] + " days"
					return
				}
				rec.Renewal = line
			},
		},
		{
			Name:  "invited_by",
			Match: func(_, lower string) bool { return containsAny(lower, "invitó", "invited by") },
			Apply: func(rec *model.MemberRecord, line string) { rec.InvitedBy = line },
		},
		{
			Name:  "invited",
			Match: func(_, lower string) bool { return containsAny(lower, "invitado", "invited") },
			Apply: func(rec *model.MemberRecord, line string) { rec.Invited = line },
		},
	}
}

// activity 取最后一个 "Active" 之后的文本,为空时保留整行
func activity(line string) string {
	i := strings.LastIndex(line, "Active")
	if i < 0 {
		return line
	}
	if rest := strings.TrimSpace(line[i+len("Active"):]); rest != "" {
		return rest
	}
	return line
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
