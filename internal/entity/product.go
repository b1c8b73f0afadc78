package entity

// Product is a catalog product as read from the products collection.
// Category holds either a category id in hex form, a literal category name or "".
type Product struct {
	ID       string
	Slug     string
	SKU      string
	Name     string
	Category string
	Stock    int64
}

// Category is a catalog category.
type Category struct {
	ID   string
	Name string
}

// UncategorizedLabel is the display name used when a category cannot be resolved.
const UncategorizedLabel = "Uncategorized"
