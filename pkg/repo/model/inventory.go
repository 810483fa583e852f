package model

import "time"

type ItemType string

const (
	ItemChemical      ItemType = "Chemical"
	ItemGlassware     ItemType = "Glassware"
	ItemPlasticware   ItemType = "Plasticware"
	ItemInstrument    ItemType = "Instrument"
	ItemSpecimen      ItemType = "Specimen"
	ItemSlide         ItemType = "Slide"
	ItemMiscellaneous ItemType = "Miscellaneous"
)

// InventoryBase holds the columns shared by every category table.
type InventoryBase struct {
	BaseModel
	Name          string `gorm:"type:varchar(255);not null;index" json:"name"`
	Description   string `gorm:"type:text" json:"description"`
	StoragePlace  string `gorm:"type:varchar(255)" json:"storage_place"`
	Company       string `gorm:"type:varchar(255)" json:"company"`
	CatalogNumber string `gorm:"type:varchar(128)" json:"catalog_number"`
	IsDeleted     bool   `gorm:"not null;default:false;index" json:"-"`
}

func (b *InventoryBase) Base() *InventoryBase {
	return b
}

// CountStock is the stock of a category tracked in whole units.
type CountStock struct {
	TotalQuantity     int64 `gorm:"not null;default:0" json:"total_quantity"`
	AvailableQuantity int64 `gorm:"not null;default:0" json:"available_quantity"`
}

func (s *CountStock) Stock() (total, available float64) {
	return float64(s.TotalQuantity), float64(s.AvailableQuantity)
}

func (s *CountStock) SetStock(total, available float64) {
	s.TotalQuantity = int64(total)
	s.AvailableQuantity = int64(available)
}

// InventoryRecord is implemented by every category model.
type InventoryRecord interface {
	ItemType() ItemType
	Base() *InventoryBase
	Stock() (total, available float64)
	SetStock(total, available float64)
}

type Chemical struct {
	InventoryBase
	TotalWeight      float64    `gorm:"type:numeric(14,3);not null;default:0" json:"total_weight"`
	AvailableWeight  float64    `gorm:"type:numeric(14,3);not null;default:0" json:"available_weight"`
	Unit             string     `gorm:"type:varchar(16);not null;default:g" json:"unit"`
	CAS              string     `gorm:"type:varchar(32);index" json:"cas"`
	MolecularFormula string     `gorm:"type:varchar(128)" json:"molecular_formula"`
	Grade            string     `gorm:"type:varchar(64)" json:"grade"`
	ExpiryDate       *time.Time `json:"expiry_date"`
}

func (*Chemical) TableName() string  { return "chemicals" }
func (*Chemical) ItemType() ItemType { return ItemChemical }

func (c *Chemical) Stock() (total, available float64) {
	return c.TotalWeight, c.AvailableWeight
}

func (c *Chemical) SetStock(total, available float64) {
	c.TotalWeight = total
	c.AvailableWeight = available
}

type Glassware struct {
	InventoryBase
	CountStock
	Capacity string `gorm:"type:varchar(64)" json:"capacity"`
	Material string `gorm:"type:varchar(64)" json:"material"`
}

func (*Glassware) TableName() string  { return "glassware" }
func (*Glassware) ItemType() ItemType { return ItemGlassware }

type Plasticware struct {
	InventoryBase
	CountStock
	Capacity string `gorm:"type:varchar(64)" json:"capacity"`
}

func (*Plasticware) TableName() string  { return "plasticware" }
func (*Plasticware) ItemType() ItemType { return ItemPlasticware }

type Instrument struct {
	InventoryBase
	CountStock
	Model        string `gorm:"type:varchar(128)" json:"model"`
	SerialNumber string `gorm:"type:varchar(128)" json:"serial_number"`
	Condition    string `gorm:"type:varchar(64)" json:"condition"`
}

func (*Instrument) TableName() string  { return "instruments" }
func (*Instrument) ItemType() ItemType { return ItemInstrument }

type Specimen struct {
	InventoryBase
	CountStock
	SpecimenType string `gorm:"type:varchar(128)" json:"specimen_type"`
	Preservation string `gorm:"type:varchar(128)" json:"preservation"`
}

func (*Specimen) TableName() string  { return "specimens" }
func (*Specimen) ItemType() ItemType { return ItemSpecimen }

type Slide struct {
	InventoryBase
	CountStock
	SlideType string `gorm:"type:varchar(128)" json:"slide_type"`
	Stain     string `gorm:"type:varchar(128)" json:"stain"`
}

func (*Slide) TableName() string  { return "slides" }
func (*Slide) ItemType() ItemType { return ItemSlide }

type Miscellaneous struct {
	InventoryBase
	CountStock
}

func (*Miscellaneous) TableName() string  { return "miscellaneous" }
func (*Miscellaneous) ItemType() ItemType { return ItemMiscellaneous }
