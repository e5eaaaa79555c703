package scryfall

import (
	"encoding/json"
	"fmt"
	"time"
)

// Card is the typed view of a Scryfall card object. Only the fields mtgmine
// reads are declared; optional ones are pointers.
type Card struct {
	ID             string            `json:"id"`
	OracleID       *string           `json:"oracle_id,omitempty"`
	Name           string            `json:"name"`
	Lang           string            `json:"lang,omitempty"`
	ManaCost       *string           `json:"mana_cost,omitempty"`
	CMC            float64           `json:"cmc"`
	TypeLine       string            `json:"type_line"`
	Power          *string           `json:"power,omitempty"`
	Toughness      *string           `json:"toughness,omitempty"`
	Colors         []string          `json:"colors,omitempty"`
	ColorIndicator []string          `json:"color_indicator,omitempty"`
	ColorIdentity  []string          `json:"color_identity"`
	Rarity         string            `json:"rarity"`
	OracleText     *string           `json:"oracle_text,omitempty"`
	Keywords       []string          `json:"keywords,omitempty"`
	ProducedMana   []string          `json:"produced_mana,omitempty"`
	ImageURIs      map[string]string `json:"image_uris,omitempty"`
	FlavorText     *string           `json:"flavor_text,omitempty"`
	CardFaces      []map[string]any  `json:"card_faces,omitempty"`
	AllParts       []map[string]any  `json:"all_parts,omitempty"`
	Legalities     map[string]string `json:"legalities,omitempty"`
	ReleasedAt     Date              `json:"released_at"`
	Set            string            `json:"set"`
	SetName        string            `json:"set_name"`
	SetType        string            `json:"set_type"`
	Artist         *string           `json:"artist,omitempty"`
	Prices         map[string]any    `json:"prices,omitempty"`
}

// IsLegal reports whether the card is legal in format (e.g. "standard").
func (c Card) IsLegal(format string) bool {
	return c.Legalities[format] == "legal"
}

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}

	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.Format(time.DateOnly))
}
