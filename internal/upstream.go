package internal

import (
	"context"
	"net/http"
)

// upstream is everything the service needs from the outside world. It allows
// alternative implementations to be injected for tests.
type upstream interface {
	// SearchUser finds a user by name. ErrNotFound is returned if nobody
	// matches.
	SearchUser(ctx context.Context, name string) (*User, error)

	// GetBookPage returns one page of a user's read books.
	GetBookPage(ctx context.Context, userID int64, page int) (Page[BookEntry], error)

	// LookupDetail scrapes product details for an ASIN.
	LookupDetail(ctx context.Context, asin string) (*Details, error)

	// GetBibliography returns bibliographic records for the given ISBNs. The
	// result may contain nils for ISBNs the upstream doesn't know.
	GetBibliography(ctx context.Context, isbns []string) ([]*Bibliography, error)

	// FetchImage downloads an image.
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// transport exists so we can mock HTTP round trips.
type transport interface {
	http.RoundTripper
}
