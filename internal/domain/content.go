package domain

type BlogStatus string

const (
	BlogPublished BlogStatus = "published"
	BlogDraft     BlogStatus = "draft"
)

type BlogPost struct {
	ID       int64      `gorm:"primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Title    Text       `gorm:"embedded;embeddedPrefix:title_" json:"title" yaml:"title"`
	Excerpt  Text       `gorm:"embedded;embeddedPrefix:excerpt_" json:"excerpt" yaml:"excerpt"`
	Content  Text       `gorm:"embedded;embeddedPrefix:content_" json:"content" yaml:"content"`
	Date     string     `gorm:"size:32;index" json:"date" yaml:"date"`
	ReadTime int        `json:"readTime" yaml:"readTime" validate:"gt=0"`
	Category string     `gorm:"size:64;index" json:"category" yaml:"category" validate:"required"`
	Image    string     `gorm:"size:1024" json:"image" yaml:"image"`
	Tags     []string   `gorm:"serializer:json" json:"tags" yaml:"tags"`
	Featured bool       `json:"featured" yaml:"featured"`
	Status   BlogStatus `gorm:"size:20;index" json:"status" yaml:"status" validate:"required,oneof=published draft"`
	Author   string     `gorm:"size:200" json:"author" yaml:"author"`
}

// TableName Specify table name
func (BlogPost) TableName() string {
	return "shop_blog_post"
}
