package internal

import (
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"
)

var (
	_asinFromURL = regexp.MustCompile(`/dp/([^/?#]+)`)
	_nonDigit    = regexp.MustCompile(`\D`)
)

// _descriptionTextType marks the long-form description in ONIX text content.
const _descriptionTextType = "03"

// isbnFromURL extracts an ISBN-13 from a store link. Books are listed under
// their ISBN-10 so those are converted. Anything else yields "".
func isbnFromURL(link string) string {
	m := _asinFromURL.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return toISBN13(m[1])
}

// toISBN13 normalizes an ISBN-10 or ISBN-13. Input with a bad check digit
// yields "".
func toISBN13(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	switch len(isbn) {
	case 13:
		if _nonDigit.MatchString(isbn) || isbn13Check(isbn[:12]) != isbn[12] {
			return ""
		}
		return isbn
	case 10:
		if !validISBN10(isbn) {
			return ""
		}
		body := "978" + isbn[:9]
		return body + string(isbn13Check(body))
	}
	return ""
}

// validISBN10 checks the weighted mod-11 sum. Only the last character may be X.
func validISBN10(isbn string) bool {
	sum := 0
	for i, r := range isbn {
		var d int
		switch {
		case r >= '0' && r <= '9':
			d = int(r - '0')
		case (r == 'X' || r == 'x') && i == 9:
			d = 10
		default:
			return false
		}
		sum += d * (10 - i)
	}
	return sum%11 == 0
}

// isbn13Check returns the check digit for the first 12 digits of an ISBN-13.
func isbn13Check(body string) byte {
	sum := 0
	for i, r := range body {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return byte('0' + (10-sum%10)%10)
}

// enrichBooks fills in BookDetails from bibliographic records. Entries which
// share an ISBN all receive the same details.
func enrichBooks(ctx context.Context, up upstream, entries []BookEntry) error {
	byISBN := map[string][]int{}
	for idx := range entries {
		isbn := isbnFromURL(entries[idx].Book.AmazonURLs.Registration)
		if isbn == "" {
			continue
		}
		entries[idx].Details.ISBN = isbn
		byISBN[isbn] = append(byISBN[isbn], idx)
	}
	if len(byISBN) == 0 {
		return nil
	}

	isbns := slices.Sorted(maps.Keys(byISBN))
	bibs, err := up.GetBibliography(ctx, isbns)
	if err != nil {
		return fmt.Errorf("getting bibliography: %w", err)
	}

	applied := 0
	for _, bib := range bibs {
		if bib == nil {
			continue
		}
		for _, idx := range byISBN[toISBN13(bib.Summary.ISBN)] {
			applyBibliography(&entries[idx].Details, bib)
			applied++
		}
	}

	Log(ctx).Debug("enriched books", "isbns", len(isbns), "entries", applied)
	return nil
}

func applyBibliography(d *BookDetails, bib *Bibliography) {
	for _, tc := range bib.Onix.CollateralDetail.TextContent {
		if tc.TextType == _descriptionTextType {
			d.Description = tc.Text
			break
		}
	}
	d.PublicationDate = _nonDigit.ReplaceAllString(bib.Summary.PubDate, "")
	d.TitleReading = bib.Onix.DescriptiveDetail.TitleDetail.TitleElement.TitleText.CollationKey
}
