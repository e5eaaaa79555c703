package seventeenlands

// Card and deck colors as 17Lands spells them.
const (
	Colorless  = "Colorless"
	Multicolor = "Multicolor"
	White      = "W"
	Blue       = "U"
	Black      = "B"
	Red        = "R"
	Green      = "G"

	Azorius  = "WU"
	Orzhov   = "WB"
	Boros    = "WR"
	Selesnia = "WG"
	Dimir    = "UB"
	Izzet    = "UR"
	Simic    = "UG"
	Rakdos   = "BR"
	Golgari  = "BG"
	Gruul    = "RG"

	Esper  = "WUB"
	Jeskai = "WUR"
	Bant   = "WUG"
	Mardu  = "WBR"
	Abzan  = "WBG"
	Naya   = "WRG"
	Grixis = "UBR"
	Sultai = "UBG"
	Temur  = "URG"
	Jund   = "BRG"

	NotGreen = "WUBR"
	NotRed   = "WUBG"
	NotBlack = "WURG"
	NotBlue  = "WBRG"
	NotWhite = "UBRG"
	WUBRG    = "WUBRG"
)

// DeckColors lists every deck color combination, mono colors first.
var DeckColors = []string{
	Colorless,
	White, Blue, Black, Red, Green,
	Azorius, Orzhov, Boros, Selesnia, Dimir, Izzet, Simic, Rakdos, Golgari, Gruul,
	Esper, Jeskai, Bant, Mardu, Abzan, Naya, Grixis, Sultai, Temur, Jund,
	NotGreen, NotRed, NotBlack, NotBlue, NotWhite,
	WUBRG,
}

// Deck groups.
const (
	Maindeck  = "Maindeck"
	Sideboard = "Sideboard"
)

// Event types.
const (
	PremierDraft      = "PremierDraft"
	TraditionalDraft  = "TradDraft"
	QuickDraft        = "QuickDraft"
	Sealed            = "Sealed"
	TraditionalSealed = "TradSealed"
	CubeDraft         = "CubeDraft"

	DefaultEventType = PremierDraft
)

// Player tiers. An empty tier means every player.
const (
	TopPlayers    = "top"
	MiddlePlayers = "middle"
	BottomPlayers = "bottom"
	AllPlayers    = ""
)

// Rarities.
const (
	Common   = "common"
	Uncommon = "uncommon"
	Rare     = "rare"
	Mythic   = "mythic"
)
