package entity

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Image struct {
	PublicID string `bson:"public_id" json:"publicId"`
	URL      string `bson:"url" json:"url"`
}

type Review struct {
	ID        string    `bson:"_id" json:"id"`
	UserID    string    `bson:"user_id" json:"userId"`
	UserName  string    `bson:"user_name" json:"userName"`
	Rating    int       `bson:"rating" json:"rating"`
	Comment   string    `bson:"comment,omitempty" json:"comment,omitempty"`
	Images    []Image   `bson:"images,omitempty" json:"images,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

type Ratings struct {
	Average float64 `bson:"average" json:"average"`
	Count   int     `bson:"count" json:"count"`
}

type Product struct {
	ID             string            `bson:"_id,omitempty" json:"id"`
	Name           string            `bson:"name" json:"name"`
	Slug           string            `bson:"slug" json:"slug"`
	Description    string            `bson:"description" json:"description"`
	Price          float64           `bson:"price" json:"price"`
	MRP            float64           `bson:"mrp,omitempty" json:"mrp,omitempty"`
	Discount       float64           `bson:"discount" json:"discount"`
	CategoryID     string            `bson:"category_id" json:"categoryId"`
	Images         []Image           `bson:"images" json:"images"`
	Stock          int               `bson:"stock" json:"stock"`
	Unit           string            `bson:"unit" json:"unit"`
	Specifications map[string]string `bson:"specifications,omitempty" json:"specifications,omitempty"`
	Features       []string          `bson:"features,omitempty" json:"features,omitempty"`
	IsFeatured     bool              `bson:"is_featured" json:"isFeatured"`
	IsActive       bool              `bson:"is_active" json:"isActive"`
	SKU            string            `bson:"sku,omitempty" json:"sku,omitempty"`
	Tags           []string          `bson:"tags,omitempty" json:"tags,omitempty"`
	Ratings        Ratings           `bson:"ratings" json:"ratings"`
	Reviews        []Review          `bson:"reviews" json:"reviews"`
	Views          int64             `bson:"views" json:"views"`
	CreatedAt      time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time         `bson:"updated_at" json:"updatedAt"`
}

func (p *Product) InStock() bool {
	return p.Stock > 0
}

// MainImage is the image snapshotted into cart lines and order items.
func (p *Product) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

func (p *Product) DiscountedPrice() float64 {
	if p.MRP > 0 && p.Discount > 0 {
		return p.MRP - (p.MRP*p.Discount)/100
	}
	return p.Price
}

func (p *Product) ReviewByUser(userID string) *Review {
	for i := range p.Reviews {
		if p.Reviews[i].UserID == userID {
			return &p.Reviews[i]
		}
	}
	return nil
}

func (p *Product) FindReview(reviewID string) *Review {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			return &p.Reviews[i]
		}
	}
	return nil
}

func (p *Product) AddReview(userID, userName string, rating int, comment string, images []Image) Review {
	review := Review{
		ID:        primitive.NewObjectID().Hex(),
		UserID:    userID,
		UserName:  userName,
		Rating:    rating,
		Comment:   comment,
		Images:    images,
		CreatedAt: time.Now().UTC(),
	}
	p.Reviews = append(p.Reviews, review)
	p.RecalculateRating()
	return review
}

func (p *Product) RemoveReview(reviewID string) bool {
	for i := range p.Reviews {
		if p.Reviews[i].ID == reviewID {
			p.Reviews = append(p.Reviews[:i], p.Reviews[i+1:]...)
			p.RecalculateRating()
			return true
		}
	}
	return false
}

// RecalculateRating keeps the stored aggregate consistent with the embedded
// review list: arithmetic mean of all ratings, rounded to one decimal.
func (p *Product) RecalculateRating() {
	if len(p.Reviews) == 0 {
		p.Ratings = Ratings{}
		return
	}
	var sum int
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Ratings.Average = math.Round(float64(sum)/float64(len(p.Reviews))*10) / 10
	p.Ratings.Count = len(p.Reviews)
}

func (p *Product) RemoveImage(publicID string) bool {
	for i := range p.Images {
		if p.Images[i].PublicID == publicID {
			p.Images = append(p.Images[:i], p.Images[i+1:]...)
			return true
		}
	}
	return false
}

// Slugify lowercases and reduces a name to [a-z0-9] runs joined by dashes.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
