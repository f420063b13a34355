package clients

import (
	"context"
	"errors"
	"fmt"

	logger "github.com/pwnholic/plotbook/internal"
	"github.com/pwnholic/plotbook/internal/book"
)

// ErrBookNotFound is returned when the generator has no book with the id.
var ErrBookNotFound = errors.New("book not found")

type RequestBuilder struct {
	Request *clientRequest
	API     APIConfig
}

func NewRequestBuilder(api APIConfig, t *HTTPClientOptions) *RequestBuilder {
	return &RequestBuilder{
		Request: NewClientRequest(api.BaseURL, t),
		API:     api,
	}
}

type profile struct {
	Name string `json:"name"`
}

// FetchBook loads a book with its chapters and fills in the author's name
// from the owner's profile. A failed profile lookup leaves the author empty.
func (r *RequestBuilder) FetchBook(ctx context.Context, id string) (*book.Book, error) {
	if id == "" {
		return nil, errors.New("book id is empty")
	}

	var b *book.Book
	err := r.Request.getJSON(ctx, r.API.BookPath, id, &b)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching book %s: %w", id, err)
	}
	// The generator answers a missing book with a JSON null.
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
	}

	if b.Author == "" && b.UserID != "" {
		name, err := r.FetchAuthorName(ctx, b.UserID)
		if err != nil {
			logger.Warn("Failed to fetch author for book %s: %v", id, err)
		}
		b.Author = name
	}

	logger.Debug("Fetched book %s with %d chapters", id, len(b.Chapters))
	return b, nil
}

func (r *RequestBuilder) FetchAuthorName(ctx context.Context, userID string) (string, error) {
	var p *profile
	if err := r.Request.getJSON(ctx, r.API.ProfilePath, userID, &p); err != nil {
		return "", err
	}
	if p == nil {
		return "", nil
	}
	return p.Name, nil
}

func (r *RequestBuilder) Close() error {
	return r.Request.Close()
}
