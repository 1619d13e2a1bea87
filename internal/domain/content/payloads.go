package content

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FAQPayload is the payload of KindFAQ entries. Keywords drive the chat
// matcher; empty keywords fall back to words of the question.
type FAQPayload struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords,omitempty"`
}

// SlidePayload is the payload of KindSlide entries
type SlidePayload struct {
	ImageURL string `json:"image_url"`
	LinkURL  string `json:"link_url,omitempty"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

// ReviewPayload is the payload of KindReview entries. Rating runs 1 to 5.
type ReviewPayload struct {
	ProductID  uuid.UUID `json:"product_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment,omitempty"`
}

// FlashSalePayload is the payload of KindFlashSale entries. The discount
// applies to the listed products inside the entry's time window.
type FlashSalePayload struct {
	ProductIDs      []uuid.UUID     `json:"product_ids"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// PagePayload is the payload of KindPage entries
type PagePayload struct {
	Title    string `json:"title"`
	BodyHTML string `json:"body_html"`
	MetaDesc string `json:"meta_description,omitempty"`
}
