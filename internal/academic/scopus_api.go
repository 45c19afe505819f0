package academic

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

const scopusSearchURL = "https://api.elsevier.com/content/search/scopus"

// ScopusAPI downloads records from the Scopus Search API.
// https://dev.elsevier.com/documentation/ScopusSearchAPI.wadl
type ScopusAPI struct {
	client *Client
	apiKey string
}

func NewScopusAPI(client *Client, apiKey string) *ScopusAPI {
	return &ScopusAPI{client: client, apiKey: apiKey}
}

type scopusAffiliation struct {
	AfID    string `json:"afid"`
	Name    string `json:"affilname"`
	Country string `json:"affiliation-country"`
}

type scopusAuthor struct {
	AuthID string `json:"authid"`
	Name   string `json:"authname"`
	AfIDs  []struct {
		ID string `json:"$"`
	} `json:"afid"`
}

// scopusEntry is one record of the COMPLETE view search response.
type scopusEntry struct {
	EID          string              `json:"eid"`
	Identifier   string              `json:"dc:identifier"`
	Title        string              `json:"dc:title"`
	Description  string              `json:"dc:description"`
	DOI          string              `json:"prism:doi"`
	CoverDate    string              `json:"prism:coverDate"`
	Source       string              `json:"prism:publicationName"`
	AuthKeywords string              `json:"authkeywords"`
	PubmedID     string              `json:"pubmed-id"`
	Affiliations []scopusAffiliation `json:"affiliation"`
	Authors      []scopusAuthor      `json:"author"`
	Error        string              `json:"error"`
}

type scopusPage struct {
	SearchResults struct {
		TotalResults string `json:"opensearch:totalResults"`
		Cursor       struct {
			Next string `json:"@next"`
		} `json:"cursor"`
		Entries []scopusEntry `json:"entry"`
	} `json:"search-results"`
}

// Fetch pages through all results for a query and hands each translated item
// to fn. Pagination uses the cursor protocol, so deep result sets are fine.
func (s *ScopusAPI) Fetch(ctx context.Context, query string, fn func(models.AcademicItem) error) error {
	cursor := "*"
	nPages, nRecords := 0, 0
	for {
		log.Printf("scopus: fetching page %d records=%d", nPages, nRecords)

		var page scopusPage
		params := url.Values{
			"query":  {query},
			"cursor": {cursor},
			// https://dev.elsevier.com/sc_search_views.html
			"view": {"COMPLETE"},
		}
		headers := map[string]string{"X-ELS-APIKey": s.apiKey}
		if err := s.client.GetJSON(ctx, scopusSearchURL, params, headers, &page); err != nil {
			return fmt.Errorf("scopus page %d: %w", nPages, err)
		}
		nPages++

		entries := page.SearchResults.Entries
		if len(entries) == 0 || page.SearchResults.TotalResults == "0" {
			return nil
		}
		if len(entries) == 1 && entries[0].Error != "" {
			return nil
		}

		for _, e := range entries {
			if err := fn(s.translateEntry(e)); err != nil {
				return err
			}
			nRecords++
		}

		cursor = page.SearchResults.Cursor.Next
		if cursor == "" {
			return nil
		}
	}
}

func (s *ScopusAPI) translateEntry(e scopusEntry) models.AcademicItem {
	scopusID := e.EID
	if scopusID == "" {
		scopusID = e.Identifier
	}

	var year *int
	if len(e.CoverDate) >= 4 {
		if y, err := strconv.Atoi(e.CoverDate[:4]); err == nil {
			year = &y
		}
	}

	title := e.Title
	return models.AcademicItem{
		ScopusID:        scopusID,
		DOI:             strings.TrimPrefix(e.DOI, "https://doi.org/"),
		PubmedID:        e.PubmedID,
		Title:           title,
		TitleSlug:       TitleSlug(title),
		Text:            util.SanitizeText(e.Description),
		PublicationYear: year,
		Source:          e.Source,
		Keywords:        util.SplitTrimmed(e.AuthKeywords, " | "),
		Authors:         translateScopusAuthors(e),
	}
}

// translateScopusAuthors joins the per-record affiliation list onto the
// authors via the affiliation IDs.
func translateScopusAuthors(e scopusEntry) []models.Author {
	if len(e.Authors) == 0 {
		return nil
	}
	affiliations := make(map[string]models.Affiliation, len(e.Affiliations))
	for _, aff := range e.Affiliations {
		affiliations[aff.AfID] = models.Affiliation{
			Name:    aff.Name,
			Country: aff.Country,
		}
	}

	out := make([]models.Author, 0, len(e.Authors))
	for _, a := range e.Authors {
		author := models.Author{ScopusID: a.AuthID, Name: a.Name}
		for _, ref := range a.AfIDs {
			if aff, ok := affiliations[ref.ID]; ok {
				author.Affiliations = append(author.Affiliations, aff)
			}
		}
		out = append(out, author)
	}
	return out
}
