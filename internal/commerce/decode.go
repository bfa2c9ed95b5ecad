package commerce

import (
	"fmt"

	"github.com/cardhouse/storefront/internal/domain"
)

// Payload structs mirror the remote response shapes. Every payload is decoded
// through an explicit toDomain step that checks required fields instead of
// trusting the remote shape, so malformed responses surface as decode errors
// rather than zero values deep in the cart flow.

type moneyPayload struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

func (m moneyPayload) toDomain() domain.Money {
	return domain.Money{Amount: m.Amount, CurrencyCode: m.CurrencyCode}
}

type userErrorPayload struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

func decodeUserErrors(in []userErrorPayload) []domain.UserError {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.UserError, len(in))
	for i, ue := range in {
		out[i] = domain.UserError{Field: ue.Field, Message: ue.Message}
	}
	return out
}

type cartStubPayload struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
}

func (c *cartStubPayload) toDomain() (*domain.CartStub, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("cart payload missing id")
	}
	return &domain.CartStub{
		ID:            c.ID,
		CheckoutURL:   c.CheckoutURL,
		TotalQuantity: c.TotalQuantity,
	}, nil
}

type imagePayload struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

type merchandisePayload struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Price   moneyPayload  `json:"price"`
	Image   *imagePayload `json:"image"`
	Product struct {
		Title  string `json:"title"`
		Handle string `json:"handle"`
		Images struct {
			Nodes []imagePayload `json:"nodes"`
		} `json:"images"`
	} `json:"product"`
}

type cartLinePayload struct {
	ID          string             `json:"id"`
	Quantity    int                `json:"quantity"`
	Merchandise merchandisePayload `json:"merchandise"`
}

func (l *cartLinePayload) toDomain() (domain.CartLine, error) {
	if l.ID == "" {
		return domain.CartLine{}, fmt.Errorf("cart line payload missing id")
	}
	if l.Merchandise.ID == "" {
		return domain.CartLine{}, fmt.Errorf("cart line %s missing merchandise id", l.ID)
	}

	imageURL := ""
	if l.Merchandise.Image != nil {
		imageURL = l.Merchandise.Image.URL
	} else if nodes := l.Merchandise.Product.Images.Nodes; len(nodes) > 0 {
		imageURL = nodes[0].URL
	}

	return domain.CartLine{
		ID:       l.ID,
		Quantity: l.Quantity,
		Merchandise: domain.Merchandise{
			VariantID:     l.Merchandise.ID,
			Title:         l.Merchandise.Title,
			Price:         l.Merchandise.Price.toDomain(),
			ProductTitle:  l.Merchandise.Product.Title,
			ProductHandle: l.Merchandise.Product.Handle,
			ImageURL:      imageURL,
		},
	}, nil
}

type cartFullPayload struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Cost          struct {
		SubtotalAmount moneyPayload `json:"subtotalAmount"`
		TotalAmount    moneyPayload `json:"totalAmount"`
	} `json:"cost"`
	Lines struct {
		Nodes []cartLinePayload `json:"nodes"`
	} `json:"lines"`
}

func (c *cartFullPayload) toDomain() (*domain.CartSnapshot, error) {
	if c.ID == "" {
		return nil, fmt.Errorf("cart payload missing id")
	}

	lines := make([]domain.CartLine, 0, len(c.Lines.Nodes))
	for i := range c.Lines.Nodes {
		line, err := c.Lines.Nodes[i].toDomain()
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	return &domain.CartSnapshot{
		ID:            c.ID,
		CheckoutURL:   c.CheckoutURL,
		TotalQuantity: c.TotalQuantity,
		Subtotal:      c.Cost.SubtotalAmount.toDomain(),
		Total:         c.Cost.TotalAmount.toDomain(),
		Lines:         lines,
	}, nil
}

type variantPayload struct {
	ID                string       `json:"id"`
	Title             string       `json:"title"`
	AvailableForSale  bool         `json:"availableForSale"`
	QuantityAvailable *int         `json:"quantityAvailable"`
	Price             moneyPayload `json:"price"`
}

func (v *variantPayload) toDomain() (domain.Variant, error) {
	if v.ID == "" {
		return domain.Variant{}, fmt.Errorf("variant payload missing id")
	}

	// Inventory is nullable remotely; -1 marks "unknown" and the add-on
	// filter treats unknown as purchasable.
	qty := -1
	if v.QuantityAvailable != nil {
		qty = *v.QuantityAvailable
	}

	return domain.Variant{
		ID:                v.ID,
		Title:             v.Title,
		AvailableForSale:  v.AvailableForSale,
		QuantityAvailable: qty,
		Price:             v.Price.toDomain(),
	}, nil
}

type productPayload struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Handle          string `json:"handle"`
	DescriptionHTML string `json:"descriptionHtml"`
	Variants        struct {
		Nodes []variantPayload `json:"nodes"`
	} `json:"variants"`
	Images struct {
		Nodes []imagePayload `json:"nodes"`
	} `json:"images"`
}

func (p *productPayload) toDomain() (*domain.Product, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("product payload missing id")
	}

	variants := make([]domain.Variant, 0, len(p.Variants.Nodes))
	for i := range p.Variants.Nodes {
		v, err := p.Variants.Nodes[i].toDomain()
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}

	images := make([]domain.ProductImage, 0, len(p.Images.Nodes))
	for _, img := range p.Images.Nodes {
		images = append(images, domain.ProductImage{URL: img.URL, AltText: img.AltText})
	}

	return &domain.Product{
		ID:              p.ID,
		Title:           p.Title,
		Handle:          p.Handle,
		DescriptionHTML: p.DescriptionHTML,
		Variants:        variants,
		Images:          images,
	}, nil
}
