package es

import (
	"context"

	"github.com/LouYuanbo1/rostercrawler/internal/domain/model"
)

// TypedEsClient 面向一种文档类型的索引客户端,索引名和映射由文档类型决定
type TypedEsClient[D model.Document] interface {
	CreateIndexWithMapping(ctx context.Context) error
	// BulkIndexDocsWithID 以文档ID写入,返回写入成功的数量;存在失败文档时同时返回错误
	BulkIndexDocsWithID(ctx context.Context, docs []D) (int, error)
	CountDocs(ctx context.Context) (int64, error)
}
