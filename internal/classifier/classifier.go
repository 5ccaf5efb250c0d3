// Package classifier 把一个成员卡片的原始文本转换为结构化记录,纯函数,无外部依赖
package classifier

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
)

var (
	noise = regexp.MustCompile(`\[IMG\]|#[\p{L}\p{N}_]+`)
	// 地址形状: "Calle-12", "Carrera 7 B", "Bogota Centro, Colombia"
	addressShape = regexp.MustCompile(`^([\p{L}\p{N}_]+\s?[#-]\d+\s?[A-Za-z]?|[\p{L}\p{N}_]+\s[\p{L}\p{N}_]+,\s[\p{L}\p{N}_]+)$`)

	menuNoise       = []string{"chat", "membership"}
	streetKeywords  = []string{"calle", "avenida", "av", "cll", "carrera", "cra", "diagonal", "dg"}
	addressKeywords = []string{"calle", "av", "cll", "cra", "#"}
)

type Classifier struct {
	rules []Rule
}

// New 使用给定规则创建分类器,不传规则时使用 DefaultRules
func New(rules ...Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

var std = New()

// Classify 使用默认规则分类
func Classify(text string) model.MemberRecord {
	return std.Classify(text)
}

// Classify 永远不会panic,内部失败时返回默认记录并填写 Diagnostic
func (c *Classifier) Classify(text string) (rec model.MemberRecord) {
	defer func() {
		if r := recover(); r != nil {
			rec = model.NewMemberRecord()
			rec.Diagnostic = fmt.Sprintf("classify: %v", r)
		}
	}()

	rec = model.NewMemberRecord()
	lines := Lines(text)
	if len(lines) < 2 {
		return rec
	}
	rec.Tier = lines[0]
	rec.Name = lines[1]

	var remainder []string
	for _, line := range lines[2:] {
		if !c.apply(&rec, line) {
			remainder = append(remainder, line)
		}
	}
	resolveRemainder(&rec, remainder)
	return rec
}

func (c *Classifier) apply(rec *model.MemberRecord, line string) bool {
	lower := strings.ToLower(line)
	for _, r := range c.rules {
		if r.Match(line, lower) {
			r.Apply(rec, line)
			return true
		}
	}
	return false
}

// StripNoise 去除图片占位符和话题标签
func StripNoise(text string) string {
	return noise.ReplaceAllString(text, "")
}

// Lines 去噪后按行切分,丢弃空行和菜单噪声行
func Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(StripNoise(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || containsAny(strings.ToLower(line), menuNoise...) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// IsLocationLike 判断一行是否像地址
func IsLocationLike(line string) bool {
	return addressShape.MatchString(line) || containsAny(strings.ToLower(line), streetKeywords...)
}

func resolveRemainder(rec *model.MemberRecord, remainder []string) {
	for _, line := range remainder {
		switch {
		case IsLocationLike(line) && rec.Location == model.NotAvailable:
			rec.Location = line
		case rec.Bio == model.NotAvailable:
			rec.Bio = line
		}
	}

	// 修正: 没有地址关键字的"地址"更可能是个人简介
	if rec.Bio == model.NotAvailable && rec.Location != model.NotAvailable &&
		!containsAny(strings.ToLower(rec.Location), addressKeywords...) {
		rec.Bio = rec.Location
		rec.Location = model.NotAvailable
	}
}
