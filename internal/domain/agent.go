package domain

type AgentTier string

const (
	TierBronze   AgentTier = "bronze"
	TierSilver   AgentTier = "silver"
	TierGold     AgentTier = "gold"
	TierPlatinum AgentTier = "platinum"
)

// Agent is a distributor selling on behalf of the retailer
type Agent struct {
	ID               int64     `gorm:"primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Name             string    `gorm:"size:200;index" json:"name" yaml:"name" validate:"required"`
	Location         string    `gorm:"size:200" json:"location" yaml:"location"`
	Phone            string    `gorm:"size:32" json:"phone" yaml:"phone" validate:"required"`
	Region           string    `gorm:"size:64;index" json:"region" yaml:"region" validate:"required,region"`
	RegistrationDate string    `gorm:"size:32" json:"registrationDate,omitempty" yaml:"registrationDate"`
	Status           string    `gorm:"size:20;index" json:"status,omitempty" yaml:"status" validate:"omitempty,oneof=active inactive"`
	Tier             AgentTier `gorm:"size:20" json:"tier,omitempty" yaml:"tier" validate:"omitempty,oneof=bronze silver gold platinum"`
	SalesVolume      int64     `json:"salesVolume" yaml:"salesVolume" validate:"gte=0"`
	LastOrderDate    string    `gorm:"size:32" json:"lastOrderDate,omitempty" yaml:"lastOrderDate"`
}

// TableName Specify table name
func (Agent) TableName() string {
	return "shop_agent"
}

type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Terminal reports whether no further review is possible
func (s RegistrationStatus) Terminal() bool {
	return s == RegistrationApproved || s == RegistrationRejected
}

// CheckTransition rejects any change away from a terminal status
func (s RegistrationStatus) CheckTransition(next RegistrationStatus) error {
	if s.Terminal() && next != s {
		return NewInvalidTransition(CollectionRegistrations, string(s), string(next))
	}
	return nil
}

// Registration is an agent application awaiting review
type Registration struct {
	ID               int64              `gorm:"primaryKey;autoIncrement:false" json:"id" yaml:"id"`
	Name             string             `gorm:"size:200" json:"name" yaml:"name" validate:"required"`
	Email            string             `gorm:"size:200" json:"email" yaml:"email" validate:"required,email"`
	Phone            string             `gorm:"size:32" json:"phone" yaml:"phone" validate:"required"`
	Region           string             `gorm:"size:64" json:"region" yaml:"region" validate:"required,region"`
	PaymentReference string             `gorm:"size:128" json:"paymentReference" yaml:"paymentReference"`
	Date             string             `gorm:"size:32" json:"date" yaml:"date"`
	Status           RegistrationStatus `gorm:"size:20;index" json:"status" yaml:"status" validate:"omitempty,oneof=pending approved rejected"`
	ReviewedBy       string             `gorm:"size:200" json:"reviewedBy,omitempty" yaml:"reviewedBy"`
	ReviewDate       string             `gorm:"size:32" json:"reviewDate,omitempty" yaml:"reviewDate"`
	Notes            string             `gorm:"type:text" json:"notes,omitempty" yaml:"notes"`
}

// Revise prepares r as a plain edit of old. The status and review stamps carry
// over; only a review may move a registration out of its current status.
func (r *Registration) Revise(old Registration) error {
	if r.Status == "" {
		r.Status = old.Status
	}
	if r.Status != old.Status {
		return NewInvalidTransition(CollectionRegistrations, string(old.Status), string(r.Status))
	}
	r.ReviewedBy, r.ReviewDate = old.ReviewedBy, old.ReviewDate
	return nil
}

// TableName Specify table name
func (Registration) TableName() string {
	return "shop_registration"
}

// Regions of Tanzania accepted for agents and registrations
var Regions = []string{
	"Arusha", "Dar es Salaam", "Dodoma", "Geita", "Iringa", "Kagera", "Katavi",
	"Kigoma", "Kilimanjaro", "Lindi", "Manyara", "Mara", "Mbeya", "Morogoro",
	"Mtwara", "Mwanza", "Njombe", "Pemba North", "Pemba South", "Pwani", "Rukwa",
	"Ruvuma", "Shinyanga", "Simiyu", "Singida", "Songwe", "Tabora", "Tanga",
	"Zanzibar North", "Zanzibar South", "Zanzibar Urban West",
}

func IsRegion(s string) bool {
	for _, r := range Regions {
		if r == s {
			return true
		}
	}
	return false
}
