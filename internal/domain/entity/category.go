package entity

import "time"

type Category struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Slug         string    `bson:"slug" json:"slug"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	Image        *Image    `bson:"image,omitempty" json:"image,omitempty"`
	ParentID     string    `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	IsActive     bool      `bson:"is_active" json:"isActive"`
	DisplayOrder int       `bson:"display_order" json:"displayOrder"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}

func (c *Category) IsRoot() bool {
	return c.ParentID == ""
}

// CategoryNode is a category with its resolved subcategories, used by the
// hierarchical tree view.
type CategoryNode struct {
	Category
	Subcategories []CategoryNode `json:"subcategories,omitempty"`
}
