// Package v1 defines the MineJob file format: which API clients to build,
// which endpoints to call, and where the resulting tables go.
package v1

const MineJobKind = "MineJob"

type MineJob struct {
	Kind     string      `yaml:"kind" json:"kind" validate:"required,eq=MineJob"`
	Metadata Metadata    `yaml:"metadata" json:"metadata"`
	Spec     MineJobSpec `yaml:"spec" json:"spec"`
}

type Metadata struct {
	Name        string `yaml:"name" json:"name" validate:"required,hostname_rfc1123"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type MineJobSpec struct {
	Collectors []Collector `yaml:"collectors,omitempty" json:"collectors,omitempty" validate:"dive"`
	Steps      []Step      `yaml:"steps" json:"steps" validate:"required,min=1,dive"`
	Output     *OutputSpec `yaml:"output,omitempty" json:"output,omitempty"`
}

// Collector is one API client. Exactly one of the typed fields must be set.
type Collector struct {
	ID             string                   `yaml:"id" json:"id" validate:"required"`
	Scryfall       *ScryfallCollector       `yaml:"scryfall,omitempty" json:"scryfall,omitempty"`
	SeventeenLands *SeventeenLandsCollector `yaml:"seventeenlands,omitempty" json:"seventeenlands,omitempty"`
}

// ClientSpec holds the HTTP settings shared by every API collector. Empty
// fields fall back to the environment and then to the public endpoints.
type ClientSpec struct {
	BaseURL  string            `yaml:"base_url,omitempty" json:"base_url,omitempty" template:""`
	Headers  map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	Auth     *AuthSpec         `yaml:"auth,omitempty" json:"auth,omitempty"`
	Timeout  *int              `yaml:"timeout,omitempty" json:"timeout,omitempty" validate:"omitempty,min=1"` // seconds
	Insecure bool              `yaml:"insecure,omitempty" json:"insecure,omitempty"`
}

type AuthSpec struct {
	Bearer *string        `yaml:"bearer,omitempty" json:"bearer,omitempty" template:""`
	Basic  *BasicAuthSpec `yaml:"basic,omitempty" json:"basic,omitempty"`
}

type BasicAuthSpec struct {
	Username string `yaml:"username,omitempty" json:"username,omitempty" template:""`
	Password string `yaml:"password,omitempty" json:"password,omitempty" template:""`
	Encoded  string `yaml:"encoded,omitempty" json:"encoded,omitempty" template:""`
}

type ScryfallCollector struct {
	ClientSpec `yaml:",inline" json:",inline"`
}

type SeventeenLandsCollector struct {
	ClientSpec `yaml:",inline" json:",inline"`
}

// Step is one endpoint call. Exactly one of the typed fields must be set;
// every kind except static needs a collector of the matching kind.
type Step struct {
	ID        string  `yaml:"id" json:"id" validate:"required,excludesall=/\\"`
	Collector *string `yaml:"collector,omitempty" json:"collector,omitempty"`

	ScryfallSearch *ScryfallSearchStep `yaml:"scryfall_search,omitempty" json:"scryfall_search,omitempty"`
	ScryfallNamed  *ScryfallNamedStep  `yaml:"scryfall_named,omitempty" json:"scryfall_named,omitempty"`

	SeventeenLandsCatalog         *SeventeenLandsCatalogStep         `yaml:"seventeenlands_catalog,omitempty" json:"seventeenlands_catalog,omitempty"`
	SeventeenLandsColorRatings    *SeventeenLandsColorRatingsStep    `yaml:"seventeenlands_color_ratings,omitempty" json:"seventeenlands_color_ratings,omitempty"`
	SeventeenLandsCardRatings     *SeventeenLandsCardRatingsStep     `yaml:"seventeenlands_card_ratings,omitempty" json:"seventeenlands_card_ratings,omitempty"`
	SeventeenLandsCardEvaluations *SeventeenLandsCardEvaluationsStep `yaml:"seventeenlands_card_evaluations,omitempty" json:"seventeenlands_card_evaluations,omitempty"`
	SeventeenLandsPlayDraw        *SeventeenLandsPlayDrawStep        `yaml:"seventeenlands_play_draw,omitempty" json:"seventeenlands_play_draw,omitempty"`
	SeventeenLandsTrophies        *SeventeenLandsTrophiesStep        `yaml:"seventeenlands_trophies,omitempty" json:"seventeenlands_trophies,omitempty"`
	SeventeenLandsDraft           *SeventeenLandsDraftStep           `yaml:"seventeenlands_draft,omitempty" json:"seventeenlands_draft,omitempty"`
	SeventeenLandsDeck            *SeventeenLandsDeckStep            `yaml:"seventeenlands_deck,omitempty" json:"seventeenlands_deck,omitempty"`

	Static *StaticStep `yaml:"static,omitempty" json:"static,omitempty"`
}

// ScryfallSearchStep runs a full-text card search and returns every page.
type ScryfallSearchStep struct {
	Query               string `yaml:"query" json:"query" validate:"required" template:""`
	Unique              string `yaml:"unique,omitempty" json:"unique,omitempty"`
	Order               string `yaml:"order,omitempty" json:"order,omitempty"`
	Direction           string `yaml:"dir,omitempty" json:"dir,omitempty"`
	IncludeExtras       bool   `yaml:"include_extras,omitempty" json:"include_extras,omitempty"`
	IncludeMultilingual bool   `yaml:"include_multilingual,omitempty" json:"include_multilingual,omitempty"`
	IncludeVariations   bool   `yaml:"include_variations,omitempty" json:"include_variations,omitempty"`
	// Simplified defaults to true.
	Simplified *bool `yaml:"simplified,omitempty" json:"simplified,omitempty"`
}

// ScryfallNamedStep looks up a single card by exact or fuzzy name.
type ScryfallNamedStep struct {
	Exact      string `yaml:"exact,omitempty" json:"exact,omitempty" template:""`
	Fuzzy      string `yaml:"fuzzy,omitempty" json:"fuzzy,omitempty" template:""`
	Set        string `yaml:"set,omitempty" json:"set,omitempty" template:""`
	Simplified *bool  `yaml:"simplified,omitempty" json:"simplified,omitempty"`
}

// SeventeenLandsCatalogStep lists one of the reference catalogs: colors,
// expansions or event_types.
type SeventeenLandsCatalogStep struct {
	Catalog string `yaml:"catalog" json:"catalog" validate:"required,oneof=colors expansions event_types"`
}

// DateRange bounds an aggregation; dates are YYYY-MM-DD.
type DateRange struct {
	StartDate string `yaml:"start_date" json:"start_date" validate:"required" template:""`
	EndDate   string `yaml:"end_date" json:"end_date" validate:"required" template:""`
}

type SeventeenLandsColorRatingsStep struct {
	Expansion     string  `yaml:"expansion" json:"expansion" validate:"required" template:""`
	DateRange     `yaml:",inline" json:",inline"`
	EventType     string  `yaml:"event_type,omitempty" json:"event_type,omitempty" template:""`
	CombineSplash bool    `yaml:"combine_splash,omitempty" json:"combine_splash,omitempty"`
	UserGroup     *string `yaml:"user_group,omitempty" json:"user_group,omitempty"`
}

type SeventeenLandsCardRatingsStep struct {
	Expansion  string  `yaml:"expansion" json:"expansion" validate:"required" template:""`
	DateRange  `yaml:",inline" json:",inline"`
	EventType  string  `yaml:"event_type,omitempty" json:"event_type,omitempty" template:""`
	UserGroup  *string `yaml:"user_group,omitempty" json:"user_group,omitempty"`
	DeckColors *string `yaml:"deck_colors,omitempty" json:"deck_colors,omitempty"`
}

type SeventeenLandsCardEvaluationsStep struct {
	Expansion string  `yaml:"expansion" json:"expansion" validate:"required" template:""`
	DateRange `yaml:",inline" json:",inline"`
	EventType string  `yaml:"event_type,omitempty" json:"event_type,omitempty" template:""`
	Rarity    *string `yaml:"rarity,omitempty" json:"rarity,omitempty"`
	Color     *string `yaml:"color,omitempty" json:"color,omitempty"`
}

type SeventeenLandsPlayDrawStep struct{}

type SeventeenLandsTrophiesStep struct {
	Expansion string `yaml:"expansion" json:"expansion" validate:"required" template:""`
	EventType string `yaml:"event_type,omitempty" json:"event_type,omitempty" template:""`
}

// SeventeenLandsDraftStep fetches one draft. Table selects which of the two
// tables the draft yields: picks (default) or card_performance.
type SeventeenLandsDraftStep struct {
	DraftID string `yaml:"draft_id" json:"draft_id" validate:"required" template:""`
	Table   string `yaml:"table,omitempty" json:"table,omitempty" validate:"omitempty,oneof=picks card_performance"`
}

type SeventeenLandsDeckStep struct {
	DraftID   string `yaml:"draft_id" json:"draft_id" validate:"required" template:""`
	DeckIndex int    `yaml:"deck_index" json:"deck_index" validate:"min=0"`
}

// StaticStep loads local data (a saved export or an inline value) as a table.
type StaticStep struct {
	Filepath *string  `yaml:"filepath,omitempty" json:"filepath,omitempty" template:""`
	Value    *string  `yaml:"value,omitempty" json:"value,omitempty" template:""`
	ParseAs  *string  `yaml:"parse_as,omitempty" json:"parse_as,omitempty" validate:"omitempty,oneof=json csv"`
	Columns  []string `yaml:"columns,omitempty" json:"columns,omitempty"`
}

// OutputSpec configures how results are encoded and where they are written.
type OutputSpec struct {
	Encoding *EncodingSpec `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	Sink     *SinkSpec     `yaml:"sink,omitempty" json:"sink,omitempty"`
	Archive  *ArchiveSpec  `yaml:"archive,omitempty" json:"archive,omitempty"`
}

// EncodingSpec selects one encoder; JSON is used when none is set.
type EncodingSpec struct {
	JSON  *JSONEncodingSpec  `yaml:"json,omitempty" json:"json,omitempty"`
	CSV   *CSVEncodingSpec   `yaml:"csv,omitempty" json:"csv,omitempty"`
	Table *TableEncodingSpec `yaml:"table,omitempty" json:"table,omitempty"`
}

type JSONEncodingSpec struct {
	// Indent is empty for compact output, "  " for two spaces.
	Indent string `yaml:"indent,omitempty" json:"indent,omitempty"`
}

type CSVEncodingSpec struct {
	Delimiter string `yaml:"delimiter,omitempty" json:"delimiter,omitempty" validate:"omitempty,len=1"`
}

type TableEncodingSpec struct {
	// MaxCellWidth trims wide cells; negative disables trimming.
	MaxCellWidth int `yaml:"max_cell_width,omitempty" json:"max_cell_width,omitempty"`
}

// SinkSpec selects one destination; stdout is used when none is set.
type SinkSpec struct {
	Stdout     *StdoutSinkSpec     `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	Filesystem *FilesystemSinkSpec `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`
	S3         *S3SinkSpec         `yaml:"s3,omitempty" json:"s3,omitempty"`
}

type StdoutSinkSpec struct{}

type FilesystemSinkSpec struct {
	// Path defaults to the working directory.
	Path   *string `yaml:"path,omitempty" json:"path,omitempty" template:""`
	Prefix *string `yaml:"prefix,omitempty" json:"prefix,omitempty" template:""`
}

// S3SinkSpec uploads results to a bucket. Setting endpoint targets an
// S3-compatible store, addressed path-style.
type S3SinkSpec struct {
	Bucket      string             `yaml:"bucket" json:"bucket" validate:"required" template:""`
	Region      *string            `yaml:"region,omitempty" json:"region,omitempty" template:""`
	Endpoint    *string            `yaml:"endpoint,omitempty" json:"endpoint,omitempty" template:""`
	Prefix      *string            `yaml:"prefix,omitempty" json:"prefix,omitempty" template:""`
	Credentials *S3CredentialsSpec `yaml:"credentials,omitempty" json:"credentials,omitempty"`
}

type S3CredentialsSpec struct {
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" validate:"required" template:""`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" validate:"required" template:""`
}

// ArchiveSpec bundles every result into one tar file before it reaches the sink.
type ArchiveSpec struct {
	Name        string `yaml:"name,omitempty" json:"name,omitempty" template:""`
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty" validate:"omitempty,oneof=gzip zstd none"`
}
