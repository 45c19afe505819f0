package academic

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"nacsos/internal/models"
	"nacsos/internal/util"
)

// fullAuthor matches the "Name Surname (12345678)" entries of the
// "Author full names" column.
var fullAuthor = regexp.MustCompile(`([^(]+) \(([^)]+)\)`)

// scopusMetaColumns are copied into the item meta verbatim when present.
var scopusMetaColumns = []string{
	"Volume", "Issue", "Art. No.", "Page start",
	"Page end", "Page count", "Cited by", "Editors",
	"Publisher", "ISSN", "ISBN", "CODEN",
	"Language of Original Document",
	"Document Type", "Publication Stage", "Open Access",
}

// ReadScopusCSV streams a Scopus CSV export row by row and hands each parsed
// item to fn. Parsing continues on per-row author oddities (the export format
// is not reliable there), but a malformed CSV aborts with an error.
func ReadScopusCSV(r io.Reader, projectID string, fn func(models.AcademicItem) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read scopus csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		// Exports occasionally carry a BOM on the first column.
		col[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}

	for {
		record, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read scopus csv row: %w", err)
		}

		get := func(field string) string {
			i, ok := col[field]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		doi := strings.TrimPrefix(get("DOI"), "https://doi.org/")

		meta := map[string]any{}
		for _, key := range scopusMetaColumns {
			if v := get(key); v != "" {
				meta[key] = v
			}
		}
		// Affiliations cannot reliably be attached to individual authors, so
		// at least the unique set is kept in the meta data.
		if affs := get("Affiliations"); affs != "" {
			seen := map[string]bool{}
			unique := make([]string, 0)
			for _, aff := range util.SplitTrimmed(affs, ";") {
				if !seen[aff] {
					seen[aff] = true
					unique = append(unique, aff)
				}
			}
			meta["affiliations"] = unique
		}
		if len(meta) == 0 {
			meta = nil
		}

		keywords := util.SplitTrimmed(get("Author Keywords"), ";")

		// Newer exports label the column "Titles", older ones "Title".
		title := get("Titles")
		if title == "" {
			title = get("Title")
		}

		var year *int
		if y := get("Year"); y != "" {
			if n, err := strconv.Atoi(y); err == nil {
				year = &n
			}
		}

		item := models.AcademicItem{
			ProjectID:       projectID,
			Text:            util.SanitizeText(get("Abstract")),
			ScopusID:        get("EID"),
			DOI:             doi,
			PubmedID:        get("PubMed ID"),
			Title:           title,
			TitleSlug:       TitleSlug(title),
			PublicationYear: year,
			Source:          get("Source title"),
			Keywords:        keywords,
			Authors:         parseScopusAuthors(get),
			Meta:            meta,
		}
		if err := fn(item); err != nil {
			return err
		}
	}
}

// parseScopusAuthors works through the fallback chain of author columns:
// full names matched with IDs and short forms, then full names with IDs,
// short names with IDs, and finally bare name lists.
func parseScopusAuthors(get func(string) string) []models.Author {
	var fnAuthors, fnAuthorIDs []string
	for _, s := range util.SplitTrimmed(get("Author full names"), ";") {
		if m := fullAuthor.FindStringSubmatch(s); m != nil {
			fnAuthors = append(fnAuthors, strings.TrimSpace(m[1]))
			fnAuthorIDs = append(fnAuthorIDs, m[2])
		}
	}

	authors := util.SplitTrimmed(get("Authors"), ";")
	var authorIDs []string
	if len(authors) > 0 {
		authorIDs = util.SplitTrimmed(get("Author(s) ID"), ";")
	}

	switch {
	case fnAuthors != nil && authors != nil && len(fnAuthors) == len(authors):
		out := make([]models.Author, len(fnAuthors))
		for i, name := range fnAuthors {
			out[i] = models.Author{Name: name, ScopusID: fnAuthorIDs[i], SurnameInitials: authors[i]}
		}
		return out
	case fnAuthors != nil:
		out := make([]models.Author, len(fnAuthors))
		for i, name := range fnAuthors {
			out[i] = models.Author{Name: name, ScopusID: fnAuthorIDs[i]}
		}
		return out
	case authors != nil && len(authors) == len(authorIDs):
		out := make([]models.Author, len(authors))
		for i, name := range authors {
			out[i] = models.Author{Name: name, ScopusID: authorIDs[i]}
		}
		return out
	case authors != nil:
		out := make([]models.Author, len(authors))
		for i, name := range authors {
			out[i] = models.Author{Name: name}
		}
		return out
	}
	return nil
}
