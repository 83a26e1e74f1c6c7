package utils

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Pagination 列表接口的分页参数
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// Normalize 页码从 1 开始，每页最多 100 条
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PageSize < 1:
		p.PageSize = defaultPageSize
	case p.PageSize > maxPageSize:
		p.PageSize = maxPageSize
	}
}

func (p *Pagination) GetOffset() int { return (p.Page - 1) * p.PageSize }

func (p *Pagination) GetLimit() int { return p.PageSize }
