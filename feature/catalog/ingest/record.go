package ingest

import (
	"encoding/json"

	"cardvault/core/errs"
	"cardvault/feature/catalog/models"
)

// rawCard maps the fields the catalog schema extracts from one source
// object. Everything else rides along in the verbatim payload.
type rawCard struct {
	ID              string          `json:"id"`
	OracleID        string          `json:"oracle_id"`
	Name            string          `json:"name"`
	Set             string          `json:"set"`
	SetName         string          `json:"set_name"`
	CollectorNumber string          `json:"collector_number"`
	Lang            string          `json:"lang"`
	Layout          string          `json:"layout"`
	CardFaces       json.RawMessage `json:"card_faces"`
	TypeLine        string          `json:"type_line"`
	Rarity          string          `json:"rarity"`
	ReleasedAt      string          `json:"released_at"`
	ImageStatus     string          `json:"image_status"`
}

// parseCard converts one raw element into a catalog record, preserving the
// full object in Data for later hydration.
func parseCard(raw json.RawMessage) (models.Card, error) {
	var rc rawCard
	if err := json.Unmarshal(raw, &rc); err != nil {
		return models.Card{}, &errs.InputError{Reason: "element is not a card object: " + err.Error()}
	}
	if rc.ID == "" {
		return models.Card{}, &errs.InputError{Reason: "card object has no id"}
	}

	faces := ""
	if len(rc.CardFaces) > 0 {
		faces = string(rc.CardFaces)
	}

	return models.Card{
		ID:              rc.ID,
		OracleID:        rc.OracleID,
		Name:            rc.Name,
		SetCode:         rc.Set,
		SetName:         rc.SetName,
		CollectorNumber: rc.CollectorNumber,
		Lang:            rc.Lang,
		Layout:          rc.Layout,
		CardFaces:       faces,
		TypeLine:        rc.TypeLine,
		Rarity:          rc.Rarity,
		ReleasedAt:      rc.ReleasedAt,
		ImageStatus:     rc.ImageStatus,
		Data:            string(raw),
	}, nil
}
