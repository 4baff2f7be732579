package database

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role separates back-office administrators from listing agents.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleAgent Role = "agent"
)

// ListingStatus mirrors the publication lifecycle of a listing.
type ListingStatus string

const (
	ListingActiveForSale ListingStatus = "active_for_sale"
	ListingActiveForRent ListingStatus = "active_for_rent"
	ListingSold          ListingStatus = "sold"
	ListingRented        ListingStatus = "rented"
	ListingInactive      ListingStatus = "inactive"
)

// Currency codes accepted on listings.
type Currency string

const (
	CurrencyTRY Currency = "TRY"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// LeadSource records which surface produced a lead.
type LeadSource string

const (
	LeadSourceContactForm         LeadSource = "contact_form"
	LeadSourcePortfolioInquiry    LeadSource = "portfolio_inquiry"
	LeadSourceMortgageApplication LeadSource = "mortgage_application"
)

// LeadStatus transitions new -> in_progress -> completed.
type LeadStatus string

const (
	LeadNew        LeadStatus = "new"
	LeadInProgress LeadStatus = "in_progress"
	LeadCompleted  LeadStatus = "completed"
)

// BlogPostStatus is draft or published.
type BlogPostStatus string

const (
	BlogDraft     BlogPostStatus = "draft"
	BlogPublished BlogPostStatus = "published"
)

// CmsPageType identifies the singleton CMS pages.
type CmsPageType string

const (
	CmsPageAbout    CmsPageType = "about"
	CmsPageServices CmsPageType = "services"
	CmsPageMortgage CmsPageType = "mortgage"
)

// NavItemType is a plain link or a dropdown parent.
type NavItemType string

const (
	NavItemLink     NavItemType = "link"
	NavItemDropdown NavItemType = "dropdown"
)

// FooterLinkType groups footer links into social icons and portal links.
type FooterLinkType string

const (
	FooterLinkSocial FooterLinkType = "social"
	FooterLinkPortal FooterLinkType = "portal"
)

// MultilingualText carries the site's three content languages.
type MultilingualText struct {
	TR string `json:"tr"`
	EN string `json:"en"`
	AR string `json:"ar"`
}

// User is a back-office account (admin or agent).
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	FirstName    string    `gorm:"size:100" json:"firstName"`
	LastName     string    `gorm:"size:100" json:"lastName"`
	Role         Role      `gorm:"size:16;default:agent" json:"role"`
	Phone        string    `gorm:"size:32" json:"phone,omitempty"`
	Avatar       string    `gorm:"size:512" json:"avatar,omitempty"`
	IsActive     bool      `gorm:"default:true" json:"isActive"`
	Listings     []Listing `gorm:"foreignKey:AssignedAgentID" json:"-"`
	Leads        []Lead    `gorm:"foreignKey:AssignedAgentID" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Listing is a marketed property, always assigned to one agent.
type Listing struct {
	ID              uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	Title           datatypes.JSONType[MultilingualText] `gorm:"type:jsonb" json:"title"`
	Description     datatypes.JSONType[MultilingualText] `gorm:"type:jsonb" json:"description"`
	Price           float64                               `gorm:"type:decimal(15,2)" json:"price"`
	Currency        Currency                              `gorm:"size:8;default:TRY" json:"currency"`
	Status          ListingStatus                         `gorm:"size:32;default:inactive;index" json:"status"`
	Location        string                                `gorm:"size:255" json:"location"`
	Latitude        *float64                              `gorm:"type:decimal(10,2)" json:"latitude,omitempty"`
	Longitude       *float64                              `gorm:"type:decimal(10,2)" json:"longitude,omitempty"`
	NetArea         float64                               `gorm:"type:decimal(10,2)" json:"netArea"`
	GrossArea       *float64                              `gorm:"type:decimal(10,2)" json:"grossArea,omitempty"`
	RoomCount       string                                `gorm:"size:50" json:"roomCount"`
	VirtualTourURL  *string                               `gorm:"size:512" json:"virtualTourUrl,omitempty"`
	VideoURL        *string                               `gorm:"size:512" json:"videoUrl,omitempty"`
	AssignedAgentID uuid.UUID                             `gorm:"type:uuid;index" json:"assignedAgentId"`
	AssignedAgent   *User                                 `gorm:"foreignKey:AssignedAgentID" json:"assignedAgent,omitempty"`
	Images          []ListingImage                        `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"images"`
	CreatedAt       time.Time                             `json:"createdAt"`
	UpdatedAt       time.Time                             `json:"updatedAt"`
}

func (l *Listing) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// ListingImage is one uploaded photo; Key points into the storage bucket.
type ListingImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	URL       string    `gorm:"size:1024" json:"url"`
	Key       string    `gorm:"size:512" json:"key"`
	Position  int       `gorm:"default:0" json:"order"`
	ListingID uuid.UUID `gorm:"type:uuid;index" json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (i *ListingImage) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Lead is an inbound customer inquiry, optionally assigned to an agent.
type Lead struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName        string     `gorm:"size:100" json:"firstName"`
	LastName         string     `gorm:"size:100" json:"lastName"`
	Email            string     `gorm:"size:255" json:"email"`
	Phone            string     `gorm:"size:32" json:"phone"`
	Source           LeadSource `gorm:"size:32" json:"source"`
	Status           LeadStatus `gorm:"size:32;default:new;index" json:"status"`
	Message          string     `gorm:"type:text" json:"message,omitempty"`
	RelatedListingID *uuid.UUID `gorm:"type:uuid" json:"relatedListingId,omitempty"`
	AssignedAgentID  *uuid.UUID `gorm:"type:uuid;index" json:"assignedAgentId,omitempty"`
	AssignedAgent    *User      `gorm:"foreignKey:AssignedAgentID" json:"assignedAgent,omitempty"`
	Notes            []LeadNote `gorm:"foreignKey:LeadID;constraint:OnDelete:CASCADE" json:"notes"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

func (l *Lead) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LeadNote is an append-only follow-up note on a lead.
type LeadNote struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Content     string    `gorm:"type:text" json:"content"`
	LeadID      uuid.UUID `gorm:"type:uuid;index" json:"leadId"`
	CreatedByID uuid.UUID `gorm:"type:uuid" json:"createdById"`
	CreatedBy   *User     `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (n *LeadNote) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// BlogPost is a single-language article with SEO fields.
type BlogPost struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Slug           string         `gorm:"uniqueIndex;size:255" json:"slug"`
	Title          string         `gorm:"size:255" json:"title"`
	Excerpt        string         `gorm:"type:text" json:"excerpt,omitempty"`
	Content        string         `gorm:"type:text" json:"content"`
	CoverImageURL  string         `gorm:"size:1024" json:"coverImageUrl,omitempty"`
	Status         BlogPostStatus `gorm:"size:16;default:draft;index" json:"status"`
	PublishedAt    *time.Time     `json:"publishedAt,omitempty"`
	SeoTitle       string         `gorm:"type:text" json:"seoTitle,omitempty"`
	SeoDescription string         `gorm:"type:text" json:"seoDescription,omitempty"`
	SeoKeywords    string         `gorm:"type:text" json:"seoKeywords,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func (p *BlogPost) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// CmsPage is one of the singleton content pages (about/services/mortgage).
type CmsPage struct {
	ID              uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	Type            CmsPageType                           `gorm:"size:32;uniqueIndex" json:"type"`
	Title           datatypes.JSONType[MultilingualText] `gorm:"type:jsonb" json:"title"`
	Content         datatypes.JSONType[MultilingualText] `gorm:"type:jsonb" json:"content"`
	MetaTitle       datatypes.JSONMap                     `gorm:"type:jsonb" json:"metaTitle,omitempty"`
	MetaDescription datatypes.JSONMap                     `gorm:"type:jsonb" json:"metaDescription,omitempty"`
	CreatedAt       time.Time                             `json:"createdAt"`
	UpdatedAt       time.Time                             `json:"updatedAt"`
}

func (p *CmsPage) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NavItem is an ordered header navigation entry; dropdown children reference ParentID.
type NavItem struct {
	ID        uuid.UUID                             `gorm:"type:uuid;primaryKey" json:"id"`
	Label     datatypes.JSONType[MultilingualText] `gorm:"type:jsonb" json:"label"`
	Href      string                                `gorm:"size:512" json:"href"`
	Type      NavItemType                           `gorm:"size:16;default:link" json:"type"`
	Position  int                                   `gorm:"default:0" json:"order"`
	IsActive  bool                                  `gorm:"default:true" json:"isActive"`
	ParentID  *uuid.UUID                            `gorm:"type:uuid" json:"parentId,omitempty"`
	CreatedAt time.Time                             `json:"createdAt"`
	UpdatedAt time.Time                             `json:"updatedAt"`
}

func (n *NavItem) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// FooterLink is an ordered footer entry (social icon or listing-portal link).
type FooterLink struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Type      FooterLinkType `gorm:"size:16;index" json:"type"`
	Name      string         `gorm:"size:255" json:"name"`
	URL       string         `gorm:"size:512" json:"url"`
	Icon      string         `gorm:"size:255" json:"icon,omitempty"`
	Position  int            `gorm:"default:0" json:"order"`
	IsActive  bool           `gorm:"default:true" json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func (f *FooterLink) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
