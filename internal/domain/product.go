package domain

// Variant is a purchasable SKU of a product. QuantityAvailable is -1 when the
// commerce API does not expose inventory for the variant (unknown is treated
// as purchasable by the add-on filter).
type Variant struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	AvailableForSale  bool   `json:"available_for_sale"`
	QuantityAvailable int    `json:"quantity_available"`
	Price             Money  `json:"price"`
}

// ProductImage is a displayable product image.
type ProductImage struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// Product is a read-only projection of a remote product, fetched by handle.
type Product struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Handle          string         `json:"handle"`
	DescriptionHTML string         `json:"description_html,omitempty"`
	Variants        []Variant      `json:"variants"`
	Images          []ProductImage `json:"images"`
}

// FirstVariant returns the product's first variant, or nil if it has none.
func (p *Product) FirstVariant() *Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	return &p.Variants[0]
}

// Purchasable reports whether the variant can be added to a cart: it must be
// available for sale with non-zero or unknown inventory.
func (v *Variant) Purchasable() bool {
	return v.AvailableForSale && v.QuantityAvailable != 0
}
