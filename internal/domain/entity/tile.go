package entity

// Tile 名册页面上一个成员卡片的原始文本快照
// Position 从1开始,按文档顺序
type Tile struct {
	Page     int
	Position int
	Text     string
}

// Tiles 把一页的卡片文本按顺序包装为Tile
func Tiles(page int, texts []string) []Tile {
	tiles := make([]Tile, 0, len(texts))
	for i, text := range texts {
		tiles = append(tiles, Tile{
			Page:     page,
			Position: i + 1,
			Text:     text,
		})
	}
	return tiles
}
