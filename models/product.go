package models

// SizeVariant is a stock-keeping unit distinguished by a size label, each
// with its own stock count.
type SizeVariant struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

// Product is the inventory view of a content-store product document. Stock
// is a pointer so "no flat stock field" (sized products) is distinguishable
// from zero stock.
type Product struct {
	ID    string        `json:"_id"`
	Name  string        `json:"name"`
	Stock *int          `json:"stock"`
	Sizes []SizeVariant `json:"sizes"`
}

// SizeStock returns the stock for the given size label.
func (p Product) SizeStock(size string) (int, bool) {
	for _, v := range p.Sizes {
		if v.Size == size {
			return v.Stock, true
		}
	}
	return 0, false
}

// SiteSettings holds the storefront-wide settings read from the content
// store. Only the discount matters to checkout; the banner fields ride along
// for the storefront.
type SiteSettings struct {
	DiscountPercentage float64 `json:"discountPercentage"`
	IsBannerActive     bool    `json:"isBannerActive"`
	BannerMessage      string  `json:"bannerMessage,omitempty"`
}

// Review is a customer product review created in the content store.
type Review struct {
	ProductID  string `json:"productId" binding:"required"`
	AuthorName string `json:"authorName" binding:"required"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	ReviewText string `json:"reviewText" binding:"required"`
}
