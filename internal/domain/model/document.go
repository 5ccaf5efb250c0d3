package model

import (
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v9/typedapi/types"
)

// Document 可以写入搜索索引的文档
type Document interface {
	GetID() string
	GetIndex() string
	GetTypeMapping() *types.TypeMapping
}

const MemberIndex = "roster_members"

// MemberDoc 成员记录在搜索索引中的形式,附带运行来源信息
type MemberDoc struct {
	RunID       string    `json:"run_id"`
	Artifact    string    `json:"artifact"`
	ExtractedAt time.Time `json:"extracted_at"`
	MemberRecord
}

func NewMemberDoc(runID, artifact string, extractedAt time.Time, record MemberRecord) *MemberDoc {
	return &MemberDoc{
		RunID:        runID,
		Artifact:     artifact,
		ExtractedAt:  extractedAt,
		MemberRecord: record,
	}
}

// GetID 同一次运行内序号唯一,不同运行的文档互不覆盖
func (d *MemberDoc) GetID() string {
	return fmt.Sprintf("%s-%d", d.RunID, d.Sequence)
}

func (d *MemberDoc) GetIndex() string {
	return MemberIndex
}

func (d *MemberDoc) GetTypeMapping() *types.TypeMapping {
	return &types.TypeMapping{
		Properties: map[string]types.Property{
			"run_id":        types.NewKeywordProperty(),
			"artifact":      types.NewKeywordProperty(),
			"extracted_at":  types.NewDateProperty(),
			"page":          types.NewIntegerNumberProperty(),
			"position":      types.NewIntegerNumberProperty(),
			"sequence":      types.NewIntegerNumberProperty(),
			"name":          types.NewTextProperty(),
			"tier":          types.NewKeywordProperty(),
			"email":         types.NewKeywordProperty(),
			"activity":      types.NewKeywordProperty(),
			"joined":        types.NewKeywordProperty(),
			"joined_at":     types.NewDateProperty(),
			"value":         types.NewKeywordProperty(),
			"contribution":  types.NewKeywordProperty(),
			"renewal":       types.NewKeywordProperty(),
			"handle":        types.NewKeywordProperty(),
			"bio":           types.NewTextProperty(),
			"location":      types.NewTextProperty(),
			"invited_by":    types.NewKeywordProperty(),
			"invited":       types.NewKeywordProperty(),
			"tenure_days":   types.NewIntegerNumberProperty(),
			"tenure_months": types.NewIntegerNumberProperty(),
		},
	}
}
