package domain

// Text is a bilingual string pair, English and Swahili
type Text struct {
	En string `json:"en" yaml:"en"`
	Sw string `json:"sw" yaml:"sw"`
}

// String returns the English value, falling back to Swahili
func (t Text) String() string {
	if t.En != "" {
		return t.En
	}
	return t.Sw
}

// Lang returns the value for the given language code ("en" or "sw")
func (t Text) Lang(lang string) string {
	if lang == "sw" && t.Sw != "" {
		return t.Sw
	}
	return t.String()
}

type Category string

const (
	CategoryBabyDiapers  Category = "baby-diapers"
	CategoryBabyPants    Category = "baby-pants"
	CategoryAdultDiapers Category = "adult-diapers"
	CategoryLadyPads     Category = "lady-pads"
	CategoryBabyWipes    Category = "baby-wipes"
	CategoryUnderpads    Category = "underpads"
)

var Categories = []Category{
	CategoryBabyDiapers,
	CategoryBabyPants,
	CategoryAdultDiapers,
	CategoryLadyPads,
	CategoryBabyWipes,
	CategoryUnderpads,
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type ProductStatus string

const (
	ProductActive     ProductStatus = "active"
	ProductLowStock   ProductStatus = "low_stock"
	ProductOutOfStock ProductStatus = "out_of_stock"
	ProductDraft      ProductStatus = "draft"
)

// Product is a catalog entry. Status is informational and may disagree with Stock.
type Product struct {
	ID             int64         `gorm:"primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Name           Text          `gorm:"embedded;embeddedPrefix:name_" json:"name" yaml:"name"`
	Description    Text          `gorm:"embedded;embeddedPrefix:description_" json:"description" yaml:"description"`
	Price          int64         `json:"price" yaml:"price" validate:"gt=0"`
	WholesalePrice int64         `json:"wholesalePrice,omitempty" yaml:"wholesalePrice" validate:"gte=0"`
	Category       Category      `gorm:"size:32;index" json:"category" yaml:"category" validate:"required,category"`
	Size           string        `gorm:"size:64" json:"size,omitempty" yaml:"size"`
	BundleSize     string        `gorm:"size:64" json:"bundleSize,omitempty" yaml:"bundleSize"`
	CartonSize     string        `gorm:"size:64" json:"cartonSize,omitempty" yaml:"cartonSize"`
	WeightRange    string        `gorm:"size:64" json:"weightRange,omitempty" yaml:"weightRange"`
	HipSize        string        `gorm:"size:64" json:"hipSize,omitempty" yaml:"hipSize"`
	Stock          int           `json:"stock" yaml:"stock" validate:"gte=0"`
	Status         ProductStatus `gorm:"size:20;index" json:"status" yaml:"status" validate:"required,oneof=active low_stock out_of_stock draft"`
	Featured       bool          `json:"featured" yaml:"featured"`
	Tags           []string      `gorm:"serializer:json" json:"tags" yaml:"tags"`
	Image          string        `gorm:"size:1024" json:"image" yaml:"image"`
}

// TableName Specify table name
func (Product) TableName() string {
	return "shop_product"
}

// Visible reports whether the product may be shown on the storefront
func (p Product) Visible() bool {
	return p.Status != ProductDraft
}
