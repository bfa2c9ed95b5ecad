package domain

// Money is a decimal amount paired with its ISO currency code, exactly as the
// commerce API reports it. Amounts are kept as strings; this system never does
// arithmetic on money.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// Merchandise is a read-only projection of a remote product variant, carrying
// just enough to render a cart line.
type Merchandise struct {
	VariantID     string `json:"variant_id"`
	Title         string `json:"title"`
	Price         Money  `json:"price"`
	ProductTitle  string `json:"product_title"`
	ProductHandle string `json:"product_handle"`
	ImageURL      string `json:"image_url,omitempty"`
}

// CartLine is one row in a cart. Its ID is issued by the commerce API and is
// distinct from the variant ID of the merchandise it references. A line's
// quantity is always at least 1; a line that would reach 0 is removed instead.
type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Merchandise Merchandise `json:"merchandise"`
}

// CartSnapshot is the full, authoritative cart state as last fetched from the
// commerce API. Totals and quantities are server-computed; they are never
// derived locally.
type CartSnapshot struct {
	ID            string     `json:"id"`
	CheckoutURL   string     `json:"checkout_url"`
	TotalQuantity int        `json:"total_quantity"`
	Subtotal      Money      `json:"subtotal"`
	Total         Money      `json:"total"`
	Lines         []CartLine `json:"lines"`
}

// FindLine returns the line with the given ID, or nil if the snapshot holds
// no such line.
func (c *CartSnapshot) FindLine(lineID string) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}

// CartStub is the minimal cart view returned by cart create/mutate calls:
// identity plus the fields needed to hand off to checkout. Full line data
// requires a snapshot fetch.
type CartStub struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkout_url"`
	TotalQuantity int    `json:"total_quantity"`
}

// UserError is a business-rule rejection reported by the commerce API for a
// mutation (e.g. sold out, invalid variant).
type UserError struct {
	Field   []string `json:"field,omitempty"`
	Message string   `json:"message"`
}
