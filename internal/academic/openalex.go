package academic

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

const openAlexWorksURL = "https://api.openalex.org/works"

// openAlexFields keeps response payloads small; everything else is ignored.
var openAlexFields = []string{
	"id", "doi", "title", "display_name", "publication_year",
	"ids", "language", "locations", "authorships", "keywords",
	"abstract_inverted_index", "type", "is_retracted", "is_paratext",
	"updated_date",
}

// OpenAlexAPI downloads works from the OpenAlex API.
// https://docs.openalex.org/
type OpenAlexAPI struct {
	client *Client
	apiKey string
	// mailto puts requests into the polite pool.
	mailto string
}

func NewOpenAlexAPI(client *Client, apiKey, mailto string) *OpenAlexAPI {
	return &OpenAlexAPI{client: client, apiKey: apiKey, mailto: mailto}
}

type openAlexSource struct {
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	Source *openAlexSource `json:"source"`
}

type openAlexAuthorship struct {
	Author *struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		ORCID       string `json:"orcid"`
	} `json:"author"`
	Institutions []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
		CountryCode string `json:"country_code"`
	} `json:"institutions"`
	RawAffiliationString string `json:"raw_affiliation_string"`
}

// openAlexWork is the subset of a work record this importer consumes.
type openAlexWork struct {
	ID              string `json:"id"`
	DOI             string `json:"doi"`
	Title           string `json:"title"`
	DisplayName     string `json:"display_name"`
	PublicationYear *int   `json:"publication_year"`
	Language        string `json:"language"`
	Type            string `json:"type"`
	IsRetracted     *bool  `json:"is_retracted"`
	IsParatext      *bool  `json:"is_paratext"`
	UpdatedDate     string `json:"updated_date"`

	IDs struct {
		Pmid string `json:"pmid"`
	} `json:"ids"`

	Locations   []openAlexLocation   `json:"locations"`
	Authorships []openAlexAuthorship `json:"authorships"`
	Keywords    []struct {
		DisplayName string `json:"display_name"`
	} `json:"keywords"`

	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

type openAlexPage struct {
	Meta struct {
		Count      int    `json:"count"`
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
	Results []openAlexWork `json:"results"`
}

// Fetch pages through all works matching an OpenAlex filter expression and
// hands each translated item to fn.
func (o *OpenAlexAPI) Fetch(ctx context.Context, filter string, fn func(models.AcademicItem) error) error {
	cursor := "*"
	nPages, nWorks := 0, 0
	for cursor != "" {
		nPages++

		params := url.Values{
			"filter":   {filter},
			"select":   {strings.Join(openAlexFields, ",")},
			"cursor":   {cursor},
			"per-page": {"50"},
		}
		if o.mailto != "" {
			params.Set("mailto", o.mailto)
		}
		headers := map[string]string{}
		if o.apiKey != "" {
			headers["api_key"] = o.apiKey
		}

		var page openAlexPage
		if err := o.client.GetJSON(ctx, openAlexWorksURL, params, headers, &page); err != nil {
			return fmt.Errorf("openalex page %d: %w", nPages, err)
		}

		for _, work := range page.Results {
			if err := fn(o.translateWork(work)); err != nil {
				return err
			}
		}
		nWorks += len(page.Results)
		log.Printf("openalex: retrieved %d/%d works page=%d", nWorks, page.Meta.Count, nPages)

		cursor = page.Meta.NextCursor
	}
	return nil
}

func (o *OpenAlexAPI) translateWork(w openAlexWork) models.AcademicItem {
	var source string
	for _, loc := range w.Locations {
		if loc.Source != nil && loc.Source.DisplayName != "" {
			source = loc.Source.DisplayName
			break
		}
	}

	title := w.Title
	if title == "" {
		title = w.DisplayName
	}

	meta := map[string]any{}
	for k, v := range map[string]any{
		"type":         w.Type,
		"updated_date": w.UpdatedDate,
		"language":     w.Language,
		"display_name": w.DisplayName,
	} {
		if s, ok := v.(string); !ok || s != "" {
			meta[k] = v
		}
	}
	if w.IsRetracted != nil {
		meta["is_retracted"] = *w.IsRetracted
	}
	if w.IsParatext != nil {
		meta["is_paratext"] = *w.IsParatext
	}
	if len(meta) == 0 {
		meta = nil
	} else {
		meta = map[string]any{"openalex": meta}
	}

	var authors []models.Author
	for _, a := range w.Authorships {
		authors = append(authors, translateAuthorship(a))
	}

	var keywords []string
	for _, k := range w.Keywords {
		if k.DisplayName != "" {
			keywords = append(keywords, k.DisplayName)
		}
	}

	return models.AcademicItem{
		OpenAlexID:      w.ID,
		DOI:             strings.TrimPrefix(w.DOI, "https://doi.org/"),
		PubmedID:        w.IDs.Pmid,
		Title:           title,
		TitleSlug:       TitleSlug(title),
		Text:            util.SanitizeText(InvertAbstract(w.AbstractInvertedIndex)),
		PublicationYear: w.PublicationYear,
		Source:          source,
		Keywords:        keywords,
		Authors:         authors,
		Meta:            meta,
	}
}

func translateAuthorship(a openAlexAuthorship) models.Author {
	author := models.Author{Name: "[missing]"}
	if a.Author != nil {
		if a.Author.DisplayName != "" {
			author.Name = a.Author.DisplayName
		}
		author.OpenAlexID = a.Author.ID
		author.ORCID = a.Author.ORCID
	}
	if len(a.Institutions) > 0 {
		for _, inst := range a.Institutions {
			name := inst.DisplayName
			if name == "" {
				name = "[missing]"
			}
			author.Affiliations = append(author.Affiliations, models.Affiliation{
				Name:       name,
				OpenAlexID: inst.ID,
				Country:    inst.CountryCode,
			})
		}
	} else if a.RawAffiliationString != "" {
		author.Affiliations = []models.Affiliation{{Name: a.RawAffiliationString}}
	}
	return author
}

// InvertAbstract restores the plain abstract text from OpenAlex's inverted
// index representation (token -> positions).
func InvertAbstract(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}
	length := 0
	for _, positions := range index {
		length += len(positions)
	}
	tokens := make([]string, length)
	for token, positions := range index {
		for _, pos := range positions {
			if pos < length {
				tokens[pos] = token
			}
		}
	}
	return strings.Join(tokens, " ")
}
