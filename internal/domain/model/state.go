package model

// CrawlState 爬取进度,只能由编排器持有和修改
type CrawlState struct {
	Page   int
	Pages  int
	Target int
	Count  int
	Done   bool
}

// TargetReached 是否已达到目标数量
func (s *CrawlState) TargetReached() bool {
	return s.Target > 0 && s.Count >= s.Target
}

// NextSequence 占用下一个全局序号并返回,即使随后处理失败该序号也不会复用
func (s *CrawlState) NextSequence() int {
	s.Count++
	return s.Count
}
