package models

import "time"

// ItemType discriminates which extension table holds the type-specific
// metadata for an item. All items within a project share the same type.
type ItemType string

const (
	ItemTypeGeneric  ItemType = "generic"
	ItemTypeTwitter  ItemType = "twitter"
	ItemTypeAcademic ItemType = "academic"
	ItemTypeFullText ItemType = "fulltext"
)

// Item is the base unit of ingested content. It only carries the bare minimum
// (text, project, type); the subtype structs below add source-specific
// metadata keyed by the same item_id.
type Item struct {
	ItemID    string   `json:"item_id"`
	ProjectID string   `json:"project_id"`
	Text      string   `json:"text"`
	Type      ItemType `json:"type"`
}

// Affiliation of an author as reported by a bibliographic source.
type Affiliation struct {
	Name       string `json:"name"`
	Country    string `json:"country,omitempty"`
	OpenAlexID string `json:"openalex_id,omitempty"`
	S2ID       string `json:"s2_id,omitempty"`
}

// Author of an academic item. Name is the (possibly shortened) full name,
// SurnameInitials the "Surname, AB" form some sources provide instead.
type Author struct {
	Name            string        `json:"name"`
	SurnameInitials string        `json:"surname_initials,omitempty"`
	ORCID           string        `json:"orcid,omitempty"`
	ScopusID        string        `json:"scopus_id,omitempty"`
	OpenAlexID      string        `json:"openalex_id,omitempty"`
	S2ID            string        `json:"s2_id,omitempty"`
	Affiliations    []Affiliation `json:"affiliations,omitempty"`
}

// AcademicItem extends Item with bibliographic metadata; the abstract is
// stored as Item.Text. Proprietary IDs are kept side by side so records from
// different sources can be matched up.
type AcademicItem struct {
	ItemID    string `json:"item_id"`
	ProjectID string `json:"project_id"`
	// Abstract (or other primary text) for this publication.
	Text string `json:"text"`

	DOI        string `json:"doi,omitempty"`
	WosID      string `json:"wos_id,omitempty"`
	ScopusID   string `json:"scopus_id,omitempty"`
	OpenAlexID string `json:"openalex_id,omitempty"`
	S2ID       string `json:"s2_id,omitempty"`
	PubmedID   string `json:"pubmed_id,omitempty"`

	Title string `json:"title,omitempty"`
	// TitleSlug is the lower-cased title reduced to its alphabetic characters,
	// used for near-duplicate detection across sources.
	TitleSlug string `json:"title_slug,omitempty"`

	PublicationYear *int `json:"publication_year,omitempty"`

	// Source is the journal (or venue) name.
	Source string `json:"source,omitempty"`

	Keywords []string `json:"keywords,omitempty"`
	Authors  []Author `json:"authors,omitempty"`

	// Meta holds any additional source-specific metadata. Keys prefixed with
	// `_` are not meant to be rendered to users.
	Meta map[string]any `json:"meta,omitempty"`
}

// TwitterItem extends Item with tweet metadata; the status text is stored as
// Item.Text. Field semantics follow the Twitter v2 data dictionary.
type TwitterItem struct {
	ItemID    string `json:"item_id"`
	ProjectID string `json:"project_id"`
	Text      string `json:"text"`

	TwitterID       int64  `json:"twitter_id"`
	TwitterAuthorID *int64 `json:"twitter_author_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	Language  string    `json:"language,omitempty"`

	// ConversationID is the tweet ID of the root of the conversation tree.
	ConversationID   *int64           `json:"conversation_id,omitempty"`
	ReferencedTweets []map[string]any `json:"referenced_tweets,omitempty"`

	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Hashtags           []map[string]any `json:"hashtags,omitempty"`
	Mentions           []map[string]any `json:"mentions,omitempty"`
	URLs               []map[string]any `json:"urls,omitempty"`
	Cashtags           []map[string]any `json:"cashtags,omitempty"`
	ContextAnnotations []map[string]any `json:"context_annotations,omitempty"`

	RetweetCount int `json:"retweet_count"`
	ReplyCount   int `json:"reply_count"`
	LikeCount    int `json:"like_count"`
	QuoteCount   int `json:"quote_count"`

	// Additional author info as retrieved via expansions=author_id.
	User map[string]any `json:"user,omitempty"`
}

// GenericItem extends Item with free-form metadata only. It also backs
// full-text items, whose body lives in Item.Text.
type GenericItem struct {
	ItemID    string         `json:"item_id"`
	ProjectID string         `json:"project_id"`
	Text      string         `json:"text"`
	Meta      map[string]any `json:"meta,omitempty"`
}
