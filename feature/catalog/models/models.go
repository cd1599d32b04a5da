package models

// Card is one print record in the canonical catalog. The primary key is the
// upstream id; (name, set, number, lang) is deliberately not unique because
// multiple printings, faces and languages share it.
type Card struct {
	ID              string `gorm:"column:id;primaryKey" json:"id"`
	OracleID        string `gorm:"column:oracle_id;index" json:"oracle_id"`
	Name            string `gorm:"column:name" json:"name"`
	SetCode         string `gorm:"column:set_code" json:"set_code"`
	SetName         string `gorm:"column:set_name" json:"set_name"`
	CollectorNumber string `gorm:"column:collector_number" json:"collector_number"`
	Lang            string `gorm:"column:lang" json:"lang"`
	Layout          string `gorm:"column:layout" json:"layout"`
	CardFaces       string `gorm:"column:card_faces" json:"card_faces"`
	TypeLine        string `gorm:"column:type_line" json:"type_line"`
	Rarity          string `gorm:"column:rarity" json:"rarity"`
	ReleasedAt      string `gorm:"column:released_at" json:"released_at"`
	ImageStatus     string `gorm:"column:image_status" json:"image_status"`

	// Data is the full source object kept verbatim for later hydration.
	Data string `gorm:"column:data" json:"-"`

	// CollectedQty is the only column mutated outside ingestion, and only
	// by the reconciliation engine.
	CollectedQty int `gorm:"column:collected_qty;default:0" json:"collected_qty"`

	// Promo marks rows loaded from the secondary promotional/token catalog.
	// Not persisted; the table the row came from is the source of truth.
	Promo bool `gorm:"-" json:"promo,omitempty"`
}

// TableName overrides the table name used by Card.
func (Card) TableName() string {
	return "cards"
}

// PromoCard is a print record in the secondary promotional/token catalog.
// It shares the matching schema with Card so every resolver tier can be
// repeated against it unchanged.
type PromoCard struct {
	Card
}

// TableName overrides the table name used by PromoCard.
func (PromoCard) TableName() string {
	return "promo_cards"
}

// CatalogMeta records the provenance of the last successful ingest run.
type CatalogMeta struct {
	ID          uint   `gorm:"primaryKey"`
	Source      string `gorm:"column:source"`
	RecordCount int64  `gorm:"column:record_count"`
	BuiltAt     string `gorm:"column:built_at"`
}

// TableName overrides the table name used by CatalogMeta.
func (CatalogMeta) TableName() string {
	return "catalog_meta"
}
